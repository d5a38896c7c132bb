package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aquilesbailo123/Raven-backend/pkg/auth"
	"github.com/aquilesbailo123/Raven-backend/pkg/response"
)

type mockNotificationService struct {
	mock.Mock
}

func (m *mockNotificationService) Publish(ctx context.Context, userID int64, kind, title, body string, payload any) {
	m.Called(ctx, userID, kind, title, body, payload)
}

func (m *mockNotificationService) List(ctx context.Context, p auth.Principal, page, limit int) (Page, error) {
	args := m.Called(ctx, p, page, limit)
	pg, _ := args.Get(0).(Page)
	return pg, args.Error(1)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, p auth.Principal, ids ...int64) error {
	return m.Called(ctx, p, ids).Error(0)
}

func (m *mockNotificationService) Status(ctx context.Context, p auth.Principal) (Status, error) {
	args := m.Called(ctx, p)
	st, _ := args.Get(0).(Status)
	return st, args.Error(1)
}

func (m *mockNotificationService) Touch(ctx context.Context, userID int64) {
	m.Called(ctx, userID)
}

func setupRouter(h *NotificationHandler, p auth.Principal) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", func(c *gin.Context) {
		auth.SetPrincipal(c, p)
		c.Next()
	})
	h.RegisterRoutes(group)
	return r
}

func doRequest(r *gin.Engine, method, path string) (*httptest.ResponseRecorder, response.APIResponse) {
	req := httptest.NewRequest(method, path, strings.NewReader(""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var resp response.APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestNotificationHandler_ListUsesPaging(t *testing.T) {
	svc := new(mockNotificationService)
	r := setupRouter(NewNotificationHandler(svc, NewHub(), nil, zap.NewNop()), member)
	svc.On("List", mock.Anything, member, 2, 100).Return(Page{Results: []Notification{}, Page: 2, Limit: 100}, nil)

	w, resp := doRequest(r, http.MethodGet, "/notifications?page=2&limit=500")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)
}

func TestNotificationHandler_MarkRead(t *testing.T) {
	svc := new(mockNotificationService)
	r := setupRouter(NewNotificationHandler(svc, NewHub(), nil, zap.NewNop()), member)
	svc.On("MarkRead", mock.Anything, member, []int64{4}).Return(nil)
	svc.On("MarkRead", mock.Anything, member, []int64{5}).Return(ErrNotificationNotFound)
	svc.On("MarkRead", mock.Anything, member, []int64{6}).Return(errors.New("db down"))

	w, _ := doRequest(r, http.MethodPost, "/notifications/4/read")
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = doRequest(r, http.MethodPost, "/notifications/5/read")
	require.Equal(t, http.StatusNotFound, w.Code)
	w, resp := doRequest(r, http.MethodPost, "/notifications/6/read")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotContains(t, resp.Message, "db down")
}

type failingUpgrader struct{ called bool }

func (f *failingUpgrader) Upgrade(http.ResponseWriter, *http.Request, http.Header) (*websocket.Conn, error) {
	f.called = true
	return nil, errors.New("upgrade failed (test)")
}

func TestNotificationHandler_UpgradeFailureLeavesUserOffline(t *testing.T) {
	hub := NewHub()
	h := NewNotificationHandler(new(mockNotificationService), hub, nil, zap.NewNop())
	up := &failingUpgrader{}
	h.SetUpgrader(up)
	r := setupRouter(h, member)

	doRequest(r, http.MethodGet, "/ws/notifications")
	require.True(t, up.called)
	require.False(t, hub.IsOnline(member.UserID))
}

func TestNotificationHandler_LiveFeed(t *testing.T) {
	hub := NewHub()
	svc := new(mockNotificationService)
	svc.On("Touch", mock.Anything, member.UserID).Return()
	marked := make(chan struct{})
	svc.On("MarkRead", mock.Anything, member, []int64{1}).Return(nil).Run(func(mock.Arguments) { close(marked) })
	srv := httptest.NewServer(setupRouter(NewNotificationHandler(svc, hub, []string{"*"}, zap.NewNop()), member))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/notifications"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.IsOnline(member.UserID) }, time.Second, 10*time.Millisecond)
	require.NoError(t, hub.SendToUser(member.UserID, Event{EventType: EventNotification, Notification: Notification{ID: 1, Title: "hi"}}))

	var ev Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	require.Equal(t, "hi", ev.Notification.Title)

	require.NoError(t, conn.WriteJSON(ReadReceipt{EventType: EventRead, NotificationIDs: []int64{1}}))
	select {
	case <-marked:
	case <-time.After(2 * time.Second):
		t.Fatal("read receipt not processed")
	}

	require.NoError(t, conn.WriteJSON(map[string]string{"event_type": "typing"}))
	var errEv ErrorEvent
	require.NoError(t, conn.ReadJSON(&errEv))
	require.Equal(t, EventError, errEv.EventType)
}
