package pipeline

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aquilesbailo123/Raven-backend/pkg/validation"
)

func TestEntryInput_Validate(t *testing.T) {
	zero := decimal.Zero
	ticket := decimal.NewFromInt(25000)
	bad := "not-an-email"
	blank := "  "

	tests := []struct {
		name   string
		in     EntryInput
		fields []string
	}{
		{name: "minimal", in: EntryInput{InvestorName: "Seed Fund"}},
		{name: "full", in: EntryInput{InvestorName: "Seed Fund", Stage: StageTermSheet, TicketSize: &ticket}},
		{name: "blank name", in: EntryInput{InvestorName: "   "}, fields: []string{"investor_name"}},
		{name: "zero ticket", in: EntryInput{InvestorName: "A", TicketSize: &zero}, fields: []string{"ticket_size"}},
		{name: "unknown stage", in: EntryInput{InvestorName: "A", Stage: "LOST"}, fields: []string{"stage"}},
		{name: "bad email", in: EntryInput{InvestorName: "A", InvestorEmail: &bad}, fields: []string{"investor_email"}},
		{name: "blank email ignored", in: EntryInput{InvestorName: "A", InvestorEmail: &blank}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Normalize().Validate()
			if len(tt.fields) == 0 {
				require.NoError(t, err)
				return
			}
			fields, ok := validation.As(err)
			require.True(t, ok)
			for _, f := range tt.fields {
				require.Contains(t, fields, f)
			}
		})
	}
}

func TestEntryInput_NormalizeDefaultsStage(t *testing.T) {
	in := EntryInput{InvestorName: "  Angel  "}.Normalize()
	require.Equal(t, "Angel", in.InvestorName)
	require.Equal(t, StageContacted, in.Stage)
}

func TestCommitEntryDefaults(t *testing.T) {
	id := int64(7)
	amount := decimal.NewFromInt(50000)

	e := commitEntry(IncubatorCommit{IncubatorID: &id, Amount: &amount}, "Seed", map[int64]string{})
	require.Equal(t, "Incubator 7", e.InvestorName)
	require.Equal(t, "contact@incubator7.com", *e.InvestorEmail)
	require.Equal(t, StageCommitted, e.Stage)
	require.Equal(t, "Auto-generated from Incubator commitment for round Seed", *e.Notes)

	e = commitEntry(IncubatorCommit{IncubatorID: &id, Amount: &amount}, "Seed", map[int64]string{7: "owner@techstars.test"})
	require.Equal(t, "owner@techstars.test", *e.InvestorEmail)

	name, email := "Techstars", "deals@techstars.test"
	e = commitEntry(IncubatorCommit{IncubatorID: &id, Amount: &amount, IncubatorName: &name, Email: &email}, "Seed", map[int64]string{7: "owner@techstars.test"})
	require.Equal(t, "Techstars", e.InvestorName)
	require.Equal(t, "deals@techstars.test", *e.InvestorEmail)
}
