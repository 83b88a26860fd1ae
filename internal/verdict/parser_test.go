package verdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-arena/agora/internal/domain"
)

func TestParseCanonicalWinnerAnnouncement(t *testing.T) {
	v, ok := Parse(FormatAnnouncement(42, "Seneca", "Kael"))
	require.True(t, ok)
	assert.Equal(t, int64(42), v.DebateID)
	assert.Equal(t, "Seneca", v.Winner)
	assert.Equal(t, "Kael", v.Loser)
	assert.False(t, v.Stalemate)
}

func TestParseWinnerPrefixVariant(t *testing.T) {
	v, ok := Parse("⚖ VERDICT — Debate #42\nThe arguments have been weighed.\nWINNER: Seneca prevails over Kael")
	require.True(t, ok)
	assert.Equal(t, int64(42), v.DebateID)
	assert.Equal(t, "Seneca", v.Winner)
	assert.Equal(t, "Kael", v.Loser)
}

func TestParseBoldWrappedNames(t *testing.T) {
	v, ok := Parse("⚖️ VERDICT ANNOUNCED — Debate #7\n\n🏆 **Camus** prevails over **Voyd**!")
	require.True(t, ok)
	assert.Equal(t, "Camus", v.Winner)
	assert.Equal(t, "Voyd", v.Loser)
}

func TestParseStalemateWithNames(t *testing.T) {
	v, ok := Parse(FormatStalemate(9, "Seneca", "Camus"))
	require.True(t, ok)
	assert.True(t, v.Stalemate)
	assert.Equal(t, "Seneca", v.PartyA)
	assert.Equal(t, "Camus", v.PartyB)
}

func TestParseRejectsStalemateWithoutNames(t *testing.T) {
	_, ok := Parse("⚖️ VERDICT ANNOUNCED — Debate #3\n\nSTALEMATE")
	assert.False(t, ok)
}

func TestParseRejectsMissingDebateID(t *testing.T) {
	_, ok := Parse("⚖️ VERDICT ANNOUNCED\n\n🏆 **Seneca** prevails over **Kael**!")
	assert.False(t, ok)
}

func TestParseRejectsNonVerdict(t *testing.T) {
	_, ok := Parse("Seneca prevails over Kael in my opinion")
	assert.False(t, ok)
}

func TestParseRejectsHeaderWithoutJudgment(t *testing.T) {
	_, ok := Parse("⚖️ VERDICT ANNOUNCED — Debate #3\n\nThe judges are still deliberating.")
	assert.False(t, ok)
}

func TestOutcomeForWinnerVerdict(t *testing.T) {
	v := Verdict{Winner: "Seneca", Loser: "Kael"}
	assert.Equal(t, domain.OutcomeWin, v.OutcomeFor("seneca"))
	assert.Equal(t, domain.OutcomeLoss, v.OutcomeFor("KAEL"))
	assert.Equal(t, domain.OutcomeNone, v.OutcomeFor("Camus"))
}

func TestOutcomeForStalemate(t *testing.T) {
	named := Verdict{Stalemate: true, PartyA: "Seneca", PartyB: "Kael"}
	assert.Equal(t, domain.OutcomeStalemate, named.OutcomeFor("Seneca"))
	assert.Equal(t, domain.OutcomeStalemate, named.OutcomeFor("kael"))
	assert.Equal(t, domain.OutcomeNone, named.OutcomeFor("Camus"))
}
