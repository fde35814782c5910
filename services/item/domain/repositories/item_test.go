package repositories

import "testing"

func TestQueryOpts_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   QueryOpts
		want QueryOpts
	}{
		{"defaults", QueryOpts{}, QueryOpts{Limit: DefaultListLimit}},
		{"negative offset", QueryOpts{Offset: -3, Limit: 5}, QueryOpts{Limit: 5}},
		{"negative limit", QueryOpts{Offset: 2, Limit: -1}, QueryOpts{Offset: 2, Limit: DefaultListLimit}},
		{"limit above max", QueryOpts{Limit: 1000}, QueryOpts{Limit: MaxListLimit}},
		{"limit at max", QueryOpts{Limit: MaxListLimit}, QueryOpts{Limit: MaxListLimit}},
		{"passthrough", QueryOpts{Offset: 20, Limit: 7}, QueryOpts{Offset: 20, Limit: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); got != tt.want {
				t.Fatalf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}
