package analytics

type Runner interface {
	LogSlotEvent(*SlotEvent)
	LogAuctionObject(*AuctionObject)
	Shutdown()
}
