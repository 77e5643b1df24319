package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLinkBuilderBuild(t *testing.T) {
	builder := NewLinkBuilder(zap.NewNop())

	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{name: "empty", raw: "", ok: false},
		{name: "whitespace", raw: "   ", ok: false},
		{name: "absolute https", raw: " https://example.org/handbook.pdf ", want: "https://example.org/handbook.pdf", ok: true},
		{name: "absolute http with query", raw: "http://example.org/hours?term=fall", want: "http://example.org/hours?term=fall", ok: true},
		{name: "rooted path", raw: "/node/12", want: "/node/12", ok: true},
		{name: "bare path", raw: "node/12", want: "/node/12", ok: true},
		{name: "query only", raw: "?tab=hours", want: "?tab=hours", ok: true},
		{name: "fragment only", raw: "#toolkit", want: "#toolkit", ok: true},
		{name: "protocol relative", raw: "//cdn.example.org/file.pdf", want: "//cdn.example.org/file.pdf", ok: true},
		{name: "javascript scheme", raw: "javascript:alert(1)", ok: false},
		{name: "mailto scheme", raw: "mailto:office@example.org", ok: false},
		{name: "http without host", raw: "http:///nowhere", ok: false},
		{name: "unparseable", raw: "://missing-scheme", ok: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := builder.Build(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestWithQuery(t *testing.T) {
	assert.Equal(t, "/hours?event_id=5", WithQuery("/hours", "event_id", "5"))
	assert.Equal(t, "https://example.org/h?a=1&event_id=5#top", WithQuery("https://example.org/h?a=1#top", "event_id", "5"))
	assert.Equal(t, "/civicrm/event/participant?id=7&reset=1", WithQuery(WithQuery("/civicrm/event/participant", "reset", "1"), "id", "7"))
}
