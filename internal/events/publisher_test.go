package events

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym_checkin_backend/internal/models"
)

type recordedMsg struct {
	subject string
	data    []byte
}

type fakeConn struct {
	msgs    []recordedMsg
	err     error
	drained bool
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, recordedMsg{subject: subject, data: data})
	return nil
}

func (f *fakeConn) Drain() error {
	f.drained = true
	return nil
}

func TestNatsPublisher_PublishCheckInRecorded(t *testing.T) {
	fc := &fakeConn{}
	p := &NatsPublisher{conn: fc}

	cardID := uuid.New()
	ci := &models.CheckIn{
		ID:            uuid.New(),
		MemberID:      uuid.New(),
		CardID:        &cardID,
		ClassCategory: models.ClassGroup,
		TimeSlot:      "09:00-10:30",
		CheckInDate:   time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		CreatedAt:     time.Now(),
	}
	require.NoError(t, p.PublishCheckInRecorded(ci, false))
	require.Len(t, fc.msgs, 1)
	assert.Equal(t, SubjectCheckInRecorded, fc.msgs[0].subject)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(fc.msgs[0].data, &got))
	assert.Equal(t, "checkin.recorded", got["event_type"])
	assert.Equal(t, "2024-05-02", got["check_in_date"])
	assert.Equal(t, cardID.String(), got["card_id"])
	assert.Equal(t, false, got["is_extra"])
}

func TestNatsPublisher_PublishMemberRegistered(t *testing.T) {
	fc := &fakeConn{}
	p := &NatsPublisher{conn: fc}

	email := "new@example.com"
	m := &models.Member{ID: uuid.New(), Name: "张伟", Email: &email, CreatedAt: time.Now()}
	ci := &models.CheckIn{ID: uuid.New(), MemberID: m.ID, IsExtra: true}

	require.NoError(t, p.PublishMemberRegistered(m, ci))
	require.Len(t, fc.msgs, 1)

	var got MemberRegisteredEvent
	require.NoError(t, json.Unmarshal(fc.msgs[0].data, &got))
	assert.Equal(t, m.ID, got.MemberID)
	assert.Equal(t, ci.ID, got.FirstCheckInID)
	assert.Equal(t, "张伟", got.Name)
}

func TestNatsPublisher_PublishError(t *testing.T) {
	fc := &fakeConn{err: errors.New("nats: connection closed")}
	p := &NatsPublisher{conn: fc}

	err := p.PublishCheckInRecorded(&models.CheckIn{ID: uuid.New()}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), SubjectCheckInRecorded)

	p.Close()
	assert.True(t, fc.drained)
}
