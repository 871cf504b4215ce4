package application_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/keypanel/internal/application"
)

func TestNotice_SetAndAutoClear(t *testing.T) {
	n := application.NewNotice(20 * time.Millisecond)

	n.Set("API key created")
	assert.Equal(t, "API key created", n.Current())

	assert.Eventually(t, func() bool { return n.Current() == "" }, time.Second, 5*time.Millisecond)
}

func TestNotice_NewMessageResetsDelay(t *testing.T) {
	n := application.NewNotice(200 * time.Millisecond)

	n.Set("first")
	time.Sleep(120 * time.Millisecond)
	n.Set("second")

	// The first timer would have fired by now; the replacement must survive it.
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, "second", n.Current())

	assert.Eventually(t, func() bool { return n.Current() == "" }, time.Second, 5*time.Millisecond)
}

func TestNotice_ClearCancelsTimer(t *testing.T) {
	n := application.NewNotice(30 * time.Millisecond)

	n.Set("first")
	n.Clear()
	assert.Equal(t, "", n.Current())

	n.Set("second")
	assert.Equal(t, "second", n.Current())
}

func TestNotice_DefaultDelay(t *testing.T) {
	assert.Equal(t, application.DefaultNoticeDelay, application.NewNotice(0).Delay())
	assert.Equal(t, 2*time.Second, application.DefaultNoticeDelay)
}

func TestNotice_EmptySetClears(t *testing.T) {
	n := application.NewNotice(time.Hour)
	n.Set("something")
	n.Set("")
	assert.Equal(t, "", n.Current())
}
