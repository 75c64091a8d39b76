package invite

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"go-cashbook-ws/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload() Payload {
	return Payload{
		Email:        "john@example.com",
		Role:         model.RoleStaff,
		BusinessID:   "b1",
		BusinessName: "Acme",
	}
}

func TestIssueDecode_RoundTrip(t *testing.T) {
	c := NewCodec("secret")

	token, expires, err := c.Issue(payload())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(TTL), expires, time.Minute)

	p, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "john@example.com", p.Email)
	assert.Equal(t, model.RoleStaff, p.Role)
	assert.Equal(t, "b1", p.BusinessID)
	assert.Equal(t, expires.UnixMilli(), p.Expires)
}

func TestDecode_Expired(t *testing.T) {
	issued := time.Now().Add(-8 * 24 * time.Hour)
	token, _, err := NewCodec("secret").WithClock(func() time.Time { return issued }).Issue(payload())
	require.NoError(t, err)

	_, err = NewCodec("secret").Decode(token)
	assert.ErrorIs(t, err, ErrExpired)
	assert.Equal(t, "invitation has expired", err.Error())
}

func TestDecode_Garbage(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c", "%%%"} {
		_, err := NewCodec("secret").Decode(token)
		assert.ErrorIs(t, err, ErrInvalid, token)
		assert.Equal(t, "Invalid invitation link.", err.Error())
	}
}

func TestDecode_ForgedPayload(t *testing.T) {
	c := NewCodec("secret")
	token, _, err := c.Issue(payload())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)

	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	body["role"] = "OWNER"
	forged, err := json.Marshal(body)
	require.NoError(t, err)
	parts[1] = base64.RawURLEncoding.EncodeToString(forged)

	_, err = c.Decode(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalid, "a tampered payload fails signature checks")
}

func TestDecode_WrongSecret(t *testing.T) {
	token, _, err := NewCodec("one").Issue(payload())
	require.NoError(t, err)

	_, err = NewCodec("two").Decode(token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDecode_RoleMustBeKnown(t *testing.T) {
	p := payload()
	p.Role = "EMPEROR"
	token, _, err := NewCodec("secret").Issue(p)
	require.NoError(t, err)

	_, err = NewCodec("secret").Decode(token)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestEmptySecretRefused(t *testing.T) {
	c := NewCodec("")

	_, _, err := c.Issue(payload())
	assert.ErrorIs(t, err, ErrNoKey)

	// decoding is refused as well
	forged, _, err := NewCodec("x").Issue(payload())
	require.NoError(t, err)
	_, err = c.Decode(forged)
	assert.ErrorIs(t, err, ErrNoKey)
}
