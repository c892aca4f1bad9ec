package models

import "testing"

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ShipmentStatus
		want     bool
	}{
		{AwaitingBids, ClientReview, true},
		{ClientReview, Booking, true},
		{Booking, Booked, true},
		{Booked, DraftBL, true},
		{DraftBL, FinalBL, true},
		{DraftBL, DraftBL, true},
		{FinalBL, InTransit, true},
		{FinalBL, Sailed, true},
		{FinalBL, DraftBL, true}, // amendment rollback
		{InTransit, Sailed, true},
		{Sailed, Delivered, true},

		{AwaitingBids, Booked, false},
		{ClientReview, AwaitingBids, false},
		{Booked, FinalBL, false},
		{InTransit, Delivered, false},
		{Delivered, Sailed, false},
		{Delivered, AwaitingBids, false},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTransitionsInto(t *testing.T) {
	tests := []struct {
		to   ShipmentStatus
		want map[ShipmentStatus]bool
	}{
		{InTransit, map[ShipmentStatus]bool{FinalBL: true}},
		{Sailed, map[ShipmentStatus]bool{FinalBL: true, InTransit: true}},
		{Delivered, map[ShipmentStatus]bool{Sailed: true}},
		{DraftBL, map[ShipmentStatus]bool{Booked: true, DraftBL: true, FinalBL: true}},
	}

	for _, tt := range tests {
		got := TransitionsInto(tt.to)
		if len(got) != len(tt.want) {
			t.Errorf("TransitionsInto(%s) = %v, want %v", tt.to, got, tt.want)
			continue
		}
		for _, from := range got {
			if !tt.want[from] {
				t.Errorf("TransitionsInto(%s) includes unexpected %s", tt.to, from)
			}
		}
	}
}

func TestTerminalAmendment(t *testing.T) {
	for _, status := range []AmendmentStatus{AmendmentAccepted, AmendmentRejected} {
		if !TerminalAmendment(status) {
			t.Errorf("expected %s to be terminal", status)
		}
	}
	for _, status := range []AmendmentStatus{AmendmentRequested, AmendmentVendorReplied, AmendmentAdminReview, AmendmentClientReview} {
		if TerminalAmendment(status) {
			t.Errorf("expected %s to be open", status)
		}
	}
}
