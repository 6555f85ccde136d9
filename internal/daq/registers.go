// registers.go - register offsets within each engine's disjoint window
//
// These mirror the style of the teacher's own register-map constants (see the
// SQUARE_*/TRI_*/SINE_* blocks in audio_chip.go): one named constant block per
// engine, grouped by function. The physical addresses are board-specific; a real
// board driver would source them from the vendor register reference (the original
// used National Instruments 6363/6509 boards - see ni6363regs.h in
// _examples/original_source).

package daq

// AI engine window.
const (
	regAIModeLoad     = 0x0000
	regAIScanInterval = 0x0002
	regAIIntEnable    = 0x0004
	regAIStart1       = 0x0006
	regAIIntStatus    = 0x0008
	regAIInterrupt2   = 0x000A

	aiStartOfScanBit = 0x0001
	aiAckStrobe      = 0x0003
)

// AO engine window.
const (
	regAOChannelBase = 0x0100 // + channel*2
)

// Event timer / DIO window.
const (
	regETClockLoad  = 0x0200
	regETEnableMask = 0x0202
	regETControl    = 0x0204
	regETDOPort     = 0x0206
	regETDataReady  = 0x0208
	regETCounter    = 0x020A
	regETStatus     = 0x020C

	etStatusClockOverflow = 0x0001
	etStatusFIFOOverflow  = 0x0002
	etControlRun          = 0x0001
)
