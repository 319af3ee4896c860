package presence

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var writesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "hrms_presence_writes_total",
	Help: "Presence upsert attempts by result.",
}, []string{"result"})
