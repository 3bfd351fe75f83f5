package server

import (
	"fmt"
	"net/http"
	"testing"

	"socialhub/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userResponse struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	ProfilePicture string `json:"profile_picture"`
	FollowersCount int    `json:"followers_count"`
}

func TestFollowBlockEndpoints(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.user(t)
	bob, bobToken := ts.user(t)
	bobPath := fmt.Sprintf("/api/users/%d", bob.ID)

	resp := ts.sendJSON(t, http.MethodPost, bobPath+"/follow", nil, aliceToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodPost, bobPath+"/follow", nil, aliceToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodGet, bobPath+"/followers", nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var followers []userResponse
	decode(t, resp, &followers)
	require.Len(t, followers, 1)
	assert.Equal(t, alice.ID, followers[0].ID)

	resp = ts.sendJSON(t, http.MethodPost, fmt.Sprintf("/api/users/%d/block", alice.ID), nil, bobToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodGet, bobPath+"/followers", nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decode(t, resp, &followers)
	assert.Empty(t, followers, "block removes the follow edge")

	resp = ts.sendJSON(t, http.MethodGet, "/api/users/blocklist", nil, bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var blocked []userResponse
	decode(t, resp, &blocked)
	require.Len(t, blocked, 1)
	assert.Equal(t, alice.ID, blocked[0].ID)

	resp = ts.sendJSON(t, http.MethodGet, bobPath+"/posts", nil, aliceToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodDelete, bobPath+"/follow", nil, aliceToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodPost, fmt.Sprintf("/api/users/%d/follow", alice.ID), nil, aliceToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "cannot follow yourself")
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.user(t)
	_, bobToken := ts.user(t)
	path := fmt.Sprintf("/api/users/%d", alice.ID)

	resp := ts.sendJSON(t, http.MethodPut, path, map[string]string{"bio": "x"}, bobToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.multipart(t, http.MethodPut, path, map[string]string{"bio": "hello"},
		images(t, "image", "avatar.png"), aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first userResponse
	decode(t, resp, &first)
	assert.Equal(t, "hello", first.Bio)
	require.Len(t, ts.store.Uploads(), 1)
	assert.Equal(t, "https://media.test/"+ts.store.Uploads()[0], first.ProfilePicture)

	resp = ts.multipart(t, http.MethodPut, path, nil, images(t, "image", "avatar2.png"), aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, ts.store.Uploads()[:1], ts.store.Deletes(), "replaced image is removed")

	resp = ts.sendJSON(t, http.MethodGet, path, nil, bobToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var profile userResponse
	decode(t, resp, &profile)
	assert.Equal(t, "hello", profile.Bio)
}

func TestDeleteUser(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.user(t)
	_, bobToken := ts.user(t)
	path := fmt.Sprintf("/api/users/%d", alice.ID)

	resp := ts.multipart(t, http.MethodPost, "/api/posts", map[string]string{"caption": "bye"},
		images(t, "images", "a.png"), aliceToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodDelete, path, nil, bobToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodDelete, path, nil, aliceToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var cleared bool
	for _, ck := range resp.Cookies() {
		if ck.Name == middleware.TokenCookieName && ck.Value == "" {
			cleared = true
		}
	}
	assert.True(t, cleared, "session cookie is cleared")
	assert.ElementsMatch(t, ts.store.Uploads(), ts.store.Deletes())

	resp = ts.sendJSON(t, http.MethodGet, path, nil, bobToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearchUsers(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user(t)
	resp := ts.sendJSON(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "zq_searchable",
		"email":    "zq@example.com",
		"password": "SecurePass12!@",
		"fullName": "Searchable Person",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodGet, "/api/users/search/ZQ_SEARCH", nil, token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found []userResponse
	decode(t, resp, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "zq_searchable", found[0].Username)
}
