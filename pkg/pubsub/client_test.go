package pubsub

import "testing"

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project, name, want string
	}{
		{"farm", "orders", "projects/farm/topics/orders"},
		{"farm", " orders ", "projects/farm/topics/orders"},
		{"farm", "projects/other/topics/x", "projects/other/topics/x"},
		{"", "orders", ""},
		{"farm", "", ""},
	}
	for _, tc := range cases {
		if got := TopicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("TopicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if c.Publisher("orders") != nil {
		t.Fatalf("expected nil publisher from nil client")
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close on nil client: %v", err)
	}
	if err := c.Ping(nil); err == nil {
		t.Fatalf("expected ping error on nil client")
	}
}
