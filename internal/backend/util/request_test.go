package util

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func TestJoinURL(t *testing.T) {
	require.Equal(t, "http://h:1/ping", JoinURL("http://h:1", "ping"))
	require.Equal(t, "http://h:1/models/m", JoinURL("http://h:1/", "/models/", "m"))
}

func TestDoGzipBody(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte(`{"ok":true}`))
	require.NoError(t, gz.Close())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	// a transport that does not negotiate compression itself
	client := &http.Client{Transport: &http.Transport{DisableCompression: true}}
	res, err := Do(context.Background(), client, time.Second, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	require.True(t, res.OK())
	require.Equal(t, `{"ok":true}`, string(res.Body))
}

func TestDoStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "  upstream down \n")
	}))
	defer srv.Close()

	res, err := Do(context.Background(), srv.Client(), time.Second, http.MethodPost, srv.URL, map[string]string{"a": "b"})
	require.NoError(t, err)
	require.False(t, res.OK())
	require.EqualError(t, res.StatusError(), "upstream returned 502 Bad Gateway: upstream down")
}

func TestTruncateString(t *testing.T) {
	require.Equal(t, "abc", TruncateString("abc", 5))
	require.Equal(t, "ab...", TruncateString("abcdef", 2))

	// "é" is two bytes; cutting inside it backs off to the rune start
	require.Equal(t, "caf...", TruncateString("café au lait", 4))
	require.Equal(t, "café...", TruncateString("café au lait", 5))
	require.True(t, utf8.ValidString(TruncateString("日本語", 4)))
	require.Equal(t, "日...", TruncateString("日本語", 4))
}

func TestStatusErrorKeepsRunesWhole(t *testing.T) {
	body := strings.Repeat("a", 511) + "é tail"
	res := &Result{Status: http.StatusInternalServerError, Body: []byte(body)}

	msg := res.StatusError().Error()
	require.True(t, utf8.ValidString(msg))
	require.NotContains(t, msg, "\uFFFD")
	require.True(t, strings.HasSuffix(msg, strings.Repeat("a", 511)+"..."))
}
