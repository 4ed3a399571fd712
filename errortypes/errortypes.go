package errortypes

// ConfigError should be used when the partner configuration matches neither the display nor the mobile
// shape, or when a value inside it cannot be used (an unknown region, a bad bid transformer).
//
// ConfigErrors are fatal to adapter construction. The adapter is not used for bidding that session.
type ConfigError struct {
	Message string
}

func (err *ConfigError) Error() string {
	return err.Message
}

func (err *ConfigError) Code() int {
	return ConfigErrorCode
}

func (err *ConfigError) Severity() Severity {
	return SeverityFatal
}

// ConfigWarning flags a configuration value that is ignored rather than rejected, such as a host slot
// mapping which names an xSlot that does not exist.
type ConfigWarning struct {
	Message string
}

func (err *ConfigWarning) Error() string {
	return err.Message
}

func (err *ConfigWarning) Code() int {
	return ConfigWarningCode
}

func (err *ConfigWarning) Severity() Severity {
	return SeverityWarning
}

// UnknownRegion is returned by the endpoint resolver when a region is not in its table. Reaching it
// means configuration validation was bypassed, so it must never be replaced with a default host.
type UnknownRegion struct {
	Region string
}

func (err *UnknownRegion) Error() string {
	return "unknown region: " + err.Region
}

func (err *UnknownRegion) Code() int {
	return UnknownRegionErrorCode
}

func (err *UnknownRegion) Severity() Severity {
	return SeverityFatal
}

// NoBid flags that the network declined to bid or sent nothing usable. It is a normal outcome of an
// auction cycle, which is why it carries a warning severity.
type NoBid struct {
	Reason string
}

func (err *NoBid) Error() string {
	return "no bid: " + err.Reason
}

func (err *NoBid) Code() int {
	return NoBidWarningCode
}

func (err *NoBid) Severity() Severity {
	return SeverityWarning
}

// BadServerResponse should be used when returning errors which are caused by bad/unexpected behavior on the remote server.
//
// For example:
//
//   - The external server responded with a 500
//   - The external server gave a malformed JSONP wrapper.
//
// These should not be used to log _connection_ errors (e.g. "couldn't find host"),
// which may indicate config issues for the host company.
type BadServerResponse struct {
	Message string
}

func (err *BadServerResponse) Error() string {
	return err.Message
}

func (err *BadServerResponse) Code() int {
	return BadServerResponseErrorCode
}

func (err *BadServerResponse) Severity() Severity {
	return SeverityWarning
}

// FailedToRequestBids should be used when the transport could not reach the network at all.
type FailedToRequestBids struct {
	Message string
}

func (err *FailedToRequestBids) Error() string {
	return err.Message
}

func (err *FailedToRequestBids) Code() int {
	return FailedToRequestBidsErrorCode
}

func (err *FailedToRequestBids) Severity() Severity {
	return SeverityWarning
}

// UnknownCallback is returned when a response arrives for a callback id which was never registered
// or was already consumed. Callbacks are one-shot.
type UnknownCallback struct {
	CallbackID string
}

func (err *UnknownCallback) Error() string {
	return "no callback registered for id " + err.CallbackID
}

func (err *UnknownCallback) Code() int {
	return UnknownCallbackWarningCode
}

func (err *UnknownCallback) Severity() Severity {
	return SeverityWarning
}
