package events

import "testing"

func TestChannelNaming(t *testing.T) {
	cases := []struct {
		prefix string
		owner  string
		want   string
	}{
		{"app:ev:", "owner-1", "app:ev:owner-1"},
		{"", "owner-1", "todo:events:owner-1"}, // 未配置时用默认前缀
		{"todo:events:", "7f3a", "todo:events:7f3a"},
	}
	for _, tc := range cases {
		e := NewTaskEvents(tc.prefix)
		if got := e.Channel(tc.owner); got != tc.want {
			t.Fatalf("Channel(%q) with prefix %q = %q, want %q", tc.owner, tc.prefix, got, tc.want)
		}
	}
}
