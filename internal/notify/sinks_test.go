package notify

import (
	"slices"
	"testing"

	"goanalytics/domain/analysis"
	"goanalytics/ports"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		n    analysis.Notification
		want string
	}{
		{analysis.Notification{Kind: analysis.EventCompleted, MethodDisplayName: "Clustering", DurationMillis: 1234},
			"Clustering completed in 1.2s"},
		{analysis.Notification{Kind: analysis.EventCancelled, MethodDisplayName: "Prediction", DurationMillis: 20},
			"Prediction cancelled after 0s"},
		{analysis.Notification{Kind: analysis.EventFailed, MethodDisplayName: "Anomaly Detection", DurationMillis: 3000, Message: "collection not found"},
			"Anomaly Detection failed after 3s: collection not found"},
	}
	for _, tt := range tests {
		if got := Title(tt.n); got != tt.want {
			t.Errorf("Title(%s) = %q, want %q", tt.n.Kind, got, tt.want)
		}
	}
}

func TestFanout_DeliversInOrderAndSkipsNil(t *testing.T) {
	var order []string
	a := ports.NotificationSinkFunc(func(analysis.Notification) { order = append(order, "a") })
	b := ports.NotificationSinkFunc(func(analysis.Notification) { order = append(order, "b") })

	Fanout{a, nil, b}.Notify(analysis.Notification{})
	if !slices.Equal(order, []string{"a", "b"}) {
		t.Errorf("delivery order = %v, want [a b]", order)
	}
}
