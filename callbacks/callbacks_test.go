package callbacks

import (
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prebid/aolhtb/adapters"
	"github.com/prebid/aolhtb/errortypes"
	"github.com/prebid/aolhtb/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMetricsMock() *metrics.MetricsEngineMock {
	me := &metrics.MetricsEngineMock{}
	me.On("RecordCallbacks", mock.Anything).Return()
	me.On("RecordUnknownCallback").Return()
	return me
}

func TestInvokeRunsHandlerWithPayload(t *testing.T) {
	me := newMetricsMock()
	r := NewRegistry(me)

	r.Register("_1", func(payload []byte) *adapters.Parcel {
		return &adapters.Parcel{RequestID: "_1", Adm: string(payload)}
	})
	assert.Equal(t, 1, r.Len())

	parcel, err := r.Invoke("_1", []byte("markup"))
	require.NoError(t, err)
	assert.Equal(t, "markup", parcel.Adm)
	assert.Equal(t, 0, r.Len())

	me.AssertCalled(t, "RecordCallbacks", 1)
	me.AssertCalled(t, "RecordCallbacks", 0)
	me.AssertNotCalled(t, "RecordUnknownCallback")
}

func TestInvokeIsOneShot(t *testing.T) {
	me := newMetricsMock()
	r := NewRegistry(me)

	calls := 0
	r.Register("_1", func(payload []byte) *adapters.Parcel {
		calls++
		return &adapters.Parcel{}
	})

	_, err := r.Invoke("_1", nil)
	require.NoError(t, err)

	_, err = r.Invoke("_1", nil)
	var unknown *errortypes.UnknownCallback
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "_1", unknown.CallbackID)
	assert.Equal(t, 1, calls)
	me.AssertNumberOfCalls(t, "RecordUnknownCallback", 1)
}

func TestConcurrentInvokeRunsEachHandlerOnce(t *testing.T) {
	r := NewRegistry(newMetricsMock())

	var runs atomic.Int32
	for i := 0; i < 50; i++ {
		r.Register(strconv.Itoa(i), func(payload []byte) *adapters.Parcel {
			runs.Add(1)
			return &adapters.Parcel{}
		})
	}

	var wg sync.WaitGroup
	for worker := 0; worker < 4; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				r.Invoke(strconv.Itoa(i), nil)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(50), runs.Load())
	assert.Equal(t, 0, r.Len())
}
