package driver_test

import (
	"testing"

	"github.com/vklayer/submitq/driver"
)

func TestResultFailed(t *testing.T) {
	cases := []struct {
		r    driver.Result
		want bool
	}{
		{driver.Success, false},
		{driver.NotReady, false},
		{driver.DeviceLost, true},
		{driver.ErrorUnknown, true},
	}
	for _, c := range cases {
		if got := c.r.Failed(); got != c.want {
			t.Errorf("Result(%v).Failed():\nhave %v\nwant %v", c.r, got, c.want)
		}
	}
}

func TestResultString(t *testing.T) {
	cases := []struct {
		r    driver.Result
		want string
	}{
		{driver.Success, "SUCCESS"},
		{driver.NotReady, "NOT_READY"},
		{driver.DeviceLost, "DEVICE_LOST"},
		{driver.ErrorUnknown, "ERROR_UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.r.String(); got != c.want {
			t.Errorf("Result.String:\nhave %v\nwant %v", got, c.want)
		}
	}
}

func TestNopReflex(t *testing.T) {
	// NopReflex must satisfy Reflex without panicking on any marker.
	var r driver.Reflex = driver.NopReflex{}
	r.SetMarker(1, driver.PresentStart)
	r.SetMarker(1, driver.PresentEnd)
}
