package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type postResponse struct {
	ID        uint     `json:"id"`
	Caption   string   `json:"caption"`
	Media     []string `json:"media"`
	MediaURLs []string `json:"media_urls"`
	Liked     bool     `json:"liked"`
}

func TestCreatePost_MultipartKeepsUploadOrder(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user(t)

	resp := ts.multipart(t, http.MethodPost, "/api/posts",
		map[string]string{"caption": "sunset"},
		images(t, "images", "a.png", "b.png", "c.png"), token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var post postResponse
	decode(t, resp, &post)
	assert.Equal(t, "sunset", post.Caption)
	assert.Equal(t, ts.store.Uploads(), post.Media)
	require.Len(t, post.MediaURLs, 3)
	assert.Equal(t, "https://media.test/"+post.Media[0], post.MediaURLs[0])
}

func TestCreatePost_RejectsBadUploadsBeforeStore(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user(t)

	resp := ts.multipart(t, http.MethodPost, "/api/posts", map[string]string{"caption": "x"},
		[]upload{{field: "images", filename: "notes.txt", content: []byte("plain text")}}, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	names := make([]string, 11)
	for i := range names {
		names[i] = fmt.Sprintf("%d.png", i)
	}
	resp = ts.multipart(t, http.MethodPost, "/api/posts", map[string]string{"caption": "x"}, images(t, "images", names...), token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	assert.Empty(t, ts.store.Uploads())
}

func TestCreatePost_UploadFailureCompensates(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user(t)
	ts.store.FailUploadAt = 2

	resp := ts.multipart(t, http.MethodPost, "/api/posts", map[string]string{"caption": "x"},
		images(t, "images", "a.png", "b.png"), token)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, ts.store.Uploads(), ts.store.Deletes(), "first upload is compensated")
}

func TestUpdatePost_MediaDelta(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user(t)

	resp := ts.multipart(t, http.MethodPost, "/api/posts", map[string]string{"caption": "two"},
		images(t, "images", "a.png", "b.png"), token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created postResponse
	decode(t, resp, &created)
	path := fmt.Sprintf("/api/posts/%d", created.ID)

	resp = ts.multipart(t, http.MethodPut, path,
		map[string]string{"deleteImages": created.Media[0] + ",media/999-foreign.png"}, nil, token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, ts.store.Deletes(), "nothing is deleted when the delete list is invalid")

	resp = ts.multipart(t, http.MethodPut, path,
		map[string]string{"deleteImages": created.Media[0], "caption": "edited"},
		images(t, "images", "new.png"), token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated postResponse
	decode(t, resp, &updated)
	assert.Equal(t, "edited", updated.Caption)
	require.Len(t, updated.Media, 2)
	assert.Contains(t, updated.Media[0], "new.png", "new media goes first")
	assert.Equal(t, created.Media[1], updated.Media[1])
	assert.Equal(t, []string{created.Media[0]}, ts.store.Deletes())
}

func TestPostOwnershipAndLikes(t *testing.T) {
	ts := newTestServer(t)
	_, ownerToken := ts.user(t)
	_, otherToken := ts.user(t)

	resp := ts.sendJSON(t, http.MethodPost, "/api/posts", map[string]string{"caption": "text only"}, ownerToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post postResponse
	decode(t, resp, &post)
	path := fmt.Sprintf("/api/posts/%d", post.ID)

	resp = ts.sendJSON(t, http.MethodPut, path, map[string]string{"caption": "hijack"}, otherToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodDelete, path, nil, otherToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodPost, path+"/like", nil, otherToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodPost, path+"/like", nil, otherToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodGet, path, nil, otherToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var seen postResponse
	decode(t, resp, &seen)
	assert.True(t, seen.Liked)

	resp = ts.sendJSON(t, http.MethodDelete, path+"/like", nil, otherToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodDelete, path+"/like", nil, otherToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodDelete, path, nil, ownerToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCommentsAndReplies(t *testing.T) {
	ts := newTestServer(t)
	_, ownerToken := ts.user(t)
	_, otherToken := ts.user(t)

	resp := ts.sendJSON(t, http.MethodPost, "/api/posts", map[string]string{"caption": "discuss"}, ownerToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var post postResponse
	decode(t, resp, &post)

	resp = ts.sendJSON(t, http.MethodPost, fmt.Sprintf("/api/posts/%d/comments", post.ID),
		map[string]string{"text": "first"}, otherToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var comment struct {
		ID uint `json:"id"`
	}
	decode(t, resp, &comment)
	commentPath := fmt.Sprintf("/api/comments/%d", comment.ID)

	resp = ts.sendJSON(t, http.MethodPut, commentPath, map[string]string{"text": "nope"}, ownerToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodPost, commentPath+"/replies", map[string]string{"text": "reply"}, ownerToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var reply struct {
		ID uint `json:"id"`
	}
	decode(t, resp, &reply)
	replyPath := fmt.Sprintf("%s/replies/%d", commentPath, reply.ID)

	resp = ts.sendJSON(t, http.MethodPost, replyPath+"/like", nil, otherToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = ts.sendJSON(t, http.MethodPost, replyPath+"/like", nil, otherToken)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = ts.sendJSON(t, http.MethodDelete, fmt.Sprintf("/api/comments/%d/replies/%d", comment.ID+100, reply.ID), nil, ownerToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "reply must belong to the comment")

	resp = ts.sendJSON(t, http.MethodGet, fmt.Sprintf("/api/posts/%d/comments", post.ID), nil, ownerToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var comments []struct {
		Text    string `json:"text"`
		Replies []struct {
			ID uint `json:"id"`
		} `json:"replies"`
	}
	decode(t, resp, &comments)
	require.Len(t, comments, 1)
	assert.Len(t, comments[0].Replies, 1)

	resp = ts.sendJSON(t, http.MethodGet, "/api/posts/abc/comments", nil, ownerToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
