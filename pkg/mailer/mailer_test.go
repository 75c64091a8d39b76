package mailer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvitationMessage(t *testing.T) {
	msg, err := InvitationMessage("from@example.com", "to@example.com", Invitation{
		BusinessName:  "Acme <Traders>",
		Role:          "STAFF",
		Link:          "http://localhost:3000/invite/abc",
		ExpiresInDays: 7,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"to@example.com"}, msg.To)
	assert.Equal(t, "Invitation to join Acme <Traders> on HISAB", msg.Subject)
	assert.Contains(t, msg.HTML, "<strong>Someone</strong>")
	assert.Contains(t, msg.HTML, "Acme &lt;Traders&gt;", "business name is escaped in the body")
	assert.Contains(t, msg.HTML, "http://localhost:3000/invite/abc")
	assert.Contains(t, msg.HTML, "expire in 7 days")
}

func TestLogMailer(t *testing.T) {
	m := NewLog(slog.New(slog.NewTextHandler(io.Discard, nil)))

	id, err := m.Send(context.Background(), Message{To: []string{"a@example.com"}})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}
