package qrtone

// ECCLevel selects how many Reed-Solomon parity symbols protect each
// payload block, trading payload capacity per block for error resilience.
type ECCLevel int8

// ECC levels, weakest to strongest, mirroring the reference modem's
// Low/Medium/Quality/High naming.
const (
	ECCLow ECCLevel = iota
	ECCMedium
	ECCQuality
	ECCHigh
)

// eccSymbols holds {total symbols, parity symbols} per block for each ECC
// level; payload symbols per block is the difference.
var eccSymbols = [4][2]int{
	{14, 2},
	{14, 4},
	{12, 6},
	{10, 6},
}

const (
	frequencyRoot  = 16
	numFrequencies = 32

	multSemitone          = 1.0472941228206267
	wordTime              = 0.06
	wordSilenceTime       = 0.01
	gateTime              = 0.12
	audibleFirstFrequency = 1720
	defaultTriggerSNR     = 15
	defaultECCLevel       = ECCQuality
	percentileBackground  = 0.5
	tukeyAlpha            = 0.5
	// Frequency analysis window width is dependent on the analyzed
	// frequencies: the tone frequency may not be exactly the expected one,
	// so neighboring tone frequency values are accumulated into the window
	// sizing calculation.
	windowWidth = 0.65

	crcByteLength = 2

	headerSize       = 3
	headerECCSymbols = 2
	headerSymbols    = headerSize*2 + headerECCSymbols
)

// modemState is the two-state orchestrator FSM: waiting for the chirp
// trigger, or parsing symbols of a frame already locked onto.
type modemState int8

const (
	stateWaitingTrigger modemState = iota
	stateParsingSymbols
)
