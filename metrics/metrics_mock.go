package metrics

import (
	"time"

	"github.com/stretchr/testify/mock"
)

// MetricsEngineMock is mock for the MetricsEngine interface
type MetricsEngineMock struct {
	mock.Mock
}

// RecordConnectionAccept mock
func (me *MetricsEngineMock) RecordConnectionAccept(success bool) {
	me.Called(success)
}

// RecordConnectionClose mock
func (me *MetricsEngineMock) RecordConnectionClose(success bool) {
	me.Called(success)
}

// RecordUnknownCallback mock
func (me *MetricsEngineMock) RecordUnknownCallback() {
	me.Called()
}

// RecordRequest mock
func (me *MetricsEngineMock) RecordRequest(labels AdapterLabels) {
	me.Called(labels)
}

// RecordBid mock
func (me *MetricsEngineMock) RecordBid(labels AdapterLabels, cpm float64) {
	me.Called(labels, cpm)
}

// RecordPass mock
func (me *MetricsEngineMock) RecordPass(labels AdapterLabels) {
	me.Called(labels)
}

// RecordTransportError mock
func (me *MetricsEngineMock) RecordTransportError(labels AdapterLabels, err TransportError) {
	me.Called(labels, err)
}

// RecordRequestTime mock
func (me *MetricsEngineMock) RecordRequestTime(labels AdapterLabels, length time.Duration) {
	me.Called(labels, length)
}

// RecordCallbacks mock
func (me *MetricsEngineMock) RecordCallbacks(pending int) {
	me.Called(pending)
}
