package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	all := []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRejected}
	allowed := map[AppointmentStatus][]AppointmentStatus{
		StatusPending:   {StatusConfirmed, StatusRejected, StatusCancelled},
		StatusConfirmed: {StatusCompleted, StatusCancelled},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, a := range allowed[from] {
				if a == to {
					want = true
				}
			}
			assert.Equal(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}

	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusRejected.IsTerminal())
	assert.False(t, AppointmentStatus("Rescheduled").IsValid())
}

func TestAppointment_Transition(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	t.Run("cancel stamps reason and time", func(t *testing.T) {
		apt := &Appointment{Status: StatusPending}
		require.NoError(t, apt.Transition(StatusCancelled, "Feeling better", now))

		assert.Equal(t, StatusCancelled, apt.Status)
		require.NotNil(t, apt.CancellationReason)
		assert.Equal(t, "Feeling better", *apt.CancellationReason)
		assert.Equal(t, now, *apt.CancelledAt)
		assert.Equal(t, now, *apt.UpdatedAt)
	})

	t.Run("reject keeps reason", func(t *testing.T) {
		apt := &Appointment{Status: StatusPending}
		require.NoError(t, apt.Transition(StatusRejected, "Fully booked", now))
		assert.Equal(t, "Fully booked", *apt.RejectionReason)
		assert.Nil(t, apt.CancelledAt)
	})

	t.Run("complete stamps time", func(t *testing.T) {
		apt := &Appointment{Status: StatusConfirmed}
		require.NoError(t, apt.Transition(StatusCompleted, "", now))
		assert.Equal(t, now, *apt.CompletedAt)
		assert.Nil(t, apt.CancellationReason)
	})

	t.Run("illegal move leaves appointment untouched", func(t *testing.T) {
		apt := &Appointment{Status: StatusCompleted}
		err := apt.Transition(StatusCancelled, "late", now)

		require.Error(t, err)
		assert.True(t, HasCode(err, ErrCodeInvalidStatusTransition))
		assert.Equal(t, StatusCompleted, apt.Status)
		assert.Nil(t, apt.UpdatedAt)
		assert.Nil(t, apt.CancellationReason)
	})
}

func TestTimeOfDay(t *testing.T) {
	t.Run("end time is thirty minutes later", func(t *testing.T) {
		cases := map[string]string{
			"09:00":    "09:30",
			"14:45":    "15:15",
			"23:45":    "00:15",
			"08:10:59": "08:40",
		}
		for start, end := range cases {
			parsed, err := ParseTimeOfDay(start)
			require.NoError(t, err, start)
			assert.Equal(t, end, parsed.Add(ConsultationDuration).String(), start)
		}
	})

	t.Run("rejects bad input", func(t *testing.T) {
		for _, in := range []string{"", "9am", "25:00", "12:60", "12-30"} {
			_, err := ParseTimeOfDay(in)
			assert.Error(t, err, in)
		}
	})

	t.Run("database round trip", func(t *testing.T) {
		start := NewTimeOfDay(14, 45, 0)
		v, err := start.Value()
		require.NoError(t, err)
		assert.Equal(t, "14:45:00", v)

		var scanned TimeOfDay
		require.NoError(t, scanned.Scan([]byte("14:45:00.000000")))
		assert.Equal(t, start, scanned)

		require.NoError(t, scanned.Scan(time.Date(0, 1, 1, 23, 45, 0, 0, time.UTC)))
		assert.Equal(t, "23:45", scanned.String())

		assert.Error(t, scanned.Scan(42))
	})

	t.Run("json", func(t *testing.T) {
		data, err := json.Marshal(struct {
			Start TimeOfDay `json:"start"`
		}{NewTimeOfDay(9, 5, 0)})
		require.NoError(t, err)
		assert.JSONEq(t, `{"start":"09:05"}`, string(data))

		var decoded TimeOfDay
		require.NoError(t, json.Unmarshal([]byte(`"23:45"`), &decoded))
		assert.Equal(t, NewTimeOfDay(23, 45, 0), decoded)
		assert.Error(t, json.Unmarshal([]byte(`2345`), &decoded))
	})
}
