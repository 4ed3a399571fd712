package server

import (
	"net"
	"time"

	"github.com/golang/glog"
	"github.com/prebid/aolhtb/metrics"
)

const keepAlivePeriod = 3 * time.Minute

type tcpKeepAliveListener struct {
	*net.TCPListener
}

func (ln tcpKeepAliveListener) Accept() (net.Conn, error) {
	tc, err := ln.AcceptTCP()
	if err != nil {
		return nil, err
	}
	if err = tc.SetKeepAlive(true); err != nil {
		glog.Warningf("Failed to enable keep alive on a connection: %v", err)
	}
	if err = tc.SetKeepAlivePeriod(keepAlivePeriod); err != nil {
		glog.Warningf("Failed to set the keep alive period on a connection: %v", err)
	}
	return tc, nil
}

// monitorableListener counts accepted and closed connections, successful or not.
type monitorableListener struct {
	*net.TCPListener
	metrics metrics.MetricsEngine
}

type monitorableConnection struct {
	net.Conn
	metrics metrics.MetricsEngine
}

func (l *monitorableConnection) Close() error {
	err := l.Conn.Close()
	l.metrics.RecordConnectionClose(err == nil)
	return err
}

func (ln *monitorableListener) Accept() (net.Conn, error) {
	tc, err := tcpKeepAliveListener{ln.TCPListener}.Accept()
	if err != nil {
		ln.metrics.RecordConnectionAccept(false)
		return nil, err
	}

	ln.metrics.RecordConnectionAccept(true)
	return &monitorableConnection{tc, ln.metrics}, nil
}
