package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHelpersUpdateCollectors(t *testing.T) {
	MustRegister()
	MustRegister() // second call must not panic on duplicate registration

	before := testutil.ToFloat64(deliveriesTotal.WithLabelValues("resend", "delivered"))
	ObserveDelivery(" Resend ", "DELIVERED")
	assert.Equal(t, before+1, testutil.ToFloat64(deliveriesTotal.WithLabelValues("resend", "delivered")))

	before = testutil.ToFloat64(deliveryErrorsTotal.WithLabelValues("forward", "blocked"))
	ObserveDeliveryError("forward", "blocked")
	assert.Equal(t, before+1, testutil.ToFloat64(deliveryErrorsTotal.WithLabelValues("forward", "blocked")))

	before = testutil.ToFloat64(broadcastsTotal.WithLabelValues("completed"))
	ObserveBroadcast("completed", time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(broadcastsTotal.WithLabelValues("completed")))

	before = testutil.ToFloat64(adminCommandTotal.WithLabelValues("setadmin", "authorized"))
	IncAdminCommand("/setadmin", "authorized")
	assert.Equal(t, before+1, testutil.ToFloat64(adminCommandTotal.WithLabelValues("setadmin", "authorized")))

	SetAudience(12, 2)
	assert.Equal(t, 12.0, testutil.ToFloat64(knownUsers))
	assert.Equal(t, 2.0, testutil.ToFloat64(knownAdmins))
}
