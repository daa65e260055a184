package convert

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/and161185/calcapi/internal/model"
)

func TestUserResponse_Wire(t *testing.T) {
	t.Parallel()
	u := model.User{ID: 1, Name: "Alice"}
	b, err := json.Marshal(ToUserResponse(u))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1,"name":"Alice"}`, string(b))
}

func TestResultAndMessage_Wire(t *testing.T) {
	t.Parallel()
	b, err := json.Marshal(ToResultResponse(2.5))
	require.NoError(t, err)
	require.JSONEq(t, `{"result":2.5}`, string(b))

	b, err = json.Marshal(UserDeleted())
	require.NoError(t, err)
	require.JSONEq(t, `{"message":"User successfully deleted"}`, string(b))

	b, err = json.Marshal(ErrorResponse{Detail: "nope"})
	require.NoError(t, err)
	require.JSONEq(t, `{"detail":"nope"}`, string(b))
}
