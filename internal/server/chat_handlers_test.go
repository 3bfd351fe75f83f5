package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type conversationResponse struct {
	ID            uint  `json:"id"`
	LastMessageID *uint `json:"last_message_id"`
	Participants  []struct {
		ID uint `json:"id"`
	} `json:"participants"`
	Messages []struct {
		ID      uint   `json:"id"`
		Content string `json:"content"`
		ReadBy  []struct {
			UserID uint `json:"user_id"`
		} `json:"read_by"`
	} `json:"messages"`
}

func TestConversationFlow(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.user(t)
	bob, bobToken := ts.user(t)
	_, eveToken := ts.user(t)

	resp := ts.sendJSON(t, http.MethodPost, "/api/conversations", map[string]uint{"participantId": bob.ID}, aliceToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var conv conversationResponse
	decode(t, resp, &conv)
	assert.Len(t, conv.Participants, 2)

	resp = ts.sendJSON(t, http.MethodPost, "/api/conversations", map[string]uint{"participantId": alice.ID}, bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, "the pair already has a conversation")
	var again conversationResponse
	decode(t, resp, &again)
	assert.Equal(t, conv.ID, again.ID)

	resp = ts.sendJSON(t, http.MethodPost, "/api/conversations", map[string]uint{"participantId": alice.ID}, aliceToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	convPath := fmt.Sprintf("/api/conversations/%d", conv.ID)
	resp = ts.sendJSON(t, http.MethodPost, convPath+"/messages", map[string]string{"content": "hi bob"}, aliceToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var msg struct {
		ID uint `json:"id"`
	}
	decode(t, resp, &msg)

	resp = ts.sendJSON(t, http.MethodPost, convPath+"/messages", map[string]string{"content": "let me in"}, eveToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodPost, convPath+"/messages", map[string]string{"content": ""}, aliceToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	readPath := fmt.Sprintf("/api/messages/%d/read", msg.ID)
	resp = ts.sendJSON(t, http.MethodPost, readPath, nil, aliceToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "sender cannot mark own message")
	resp = ts.sendJSON(t, http.MethodPost, readPath, nil, bobToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodPost, readPath, nil, bobToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodGet, convPath, nil, bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var detail conversationResponse
	decode(t, resp, &detail)
	require.Len(t, detail.Messages, 1)
	assert.Equal(t, "hi bob", detail.Messages[0].Content)
	require.Len(t, detail.Messages[0].ReadBy, 1)
	assert.Equal(t, bob.ID, detail.Messages[0].ReadBy[0].UserID)
	require.NotNil(t, detail.LastMessageID)
	assert.Equal(t, msg.ID, *detail.LastMessageID)

	resp = ts.sendJSON(t, http.MethodGet, convPath, nil, eveToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodGet, "/api/conversations", nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []conversationResponse
	decode(t, resp, &list)
	assert.Len(t, list, 1)

	resp = ts.sendJSON(t, http.MethodDelete, convPath, nil, bobToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodGet, "/api/conversations", nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &list)
	assert.Empty(t, list)
}
