package ui

import (
	"bytes"
	"testing"

	"clinup/pkg/clinup"
)

func TestHome(t *testing.T) {
	cases := []struct {
		roles []string
		want  Screen
		err   bool
	}{
		{[]string{clinup.RoleHost}, ScreenReservationsHote, false},
		{[]string{"ROLE_USER", clinup.RoleProvider}, ScreenReservationsPresta, false},
		{[]string{clinup.RoleProvider, clinup.RoleHost}, ScreenReservationsHote, false},
		{[]string{"ROLE_USER"}, ScreenLogin, true},
		{nil, ScreenLogin, true},
	}
	for _, tc := range cases {
		got, err := Home(tc.roles)
		if got != tc.want || (err != nil) != tc.err {
			t.Fatalf("Home(%v) = %q, %v; want %q, err=%v", tc.roles, got, err, tc.want, tc.err)
		}
	}
}

func TestConsole_NavigateSortsParams(t *testing.T) {
	var buf bytes.Buffer
	Console{Out: &buf}.Navigate(ScreenPayment, Params{"reservationId": "3", "prestataireId": "9"})
	if got, want := buf.String(), "-> PaymentScreen prestataireId=9 reservationId=3\n"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	if _, ok := r.LastAlert(); ok {
		t.Fatalf("expected no alert")
	}
	r.Alert(KindError, "boom")
	r.Navigate(ScreenProfile, Params{"id": "4"})
	a, _ := r.LastAlert()
	n, _ := r.LastNav()
	if a.Kind != KindError || a.Message != "boom" {
		t.Fatalf("unexpected alert %+v", a)
	}
	if n.Screen != ScreenProfile || n.Params["id"] != "4" {
		t.Fatalf("unexpected nav %+v", n)
	}
}
