package qrtone

import (
	"math"

	"github.com/charmbracelet/log"
)

// Modem is the bidirectional QRTone orchestrator: it turns a payload into
// a buffer of audio samples (GetSamples) and turns a stream of audio
// samples back into a payload (PushSamples), detecting the chirp trigger
// that precedes every frame and demodulating 32-tone DTMF-like symbols
// protected by Reed-Solomon FEC and an outer CRC.
//
// A Modem is single-owner and single-threaded: callers must serialize
// their own access, but independent Modem values never share state.
type Modem struct {
	state                modemState
	frequencyAnalyzers   [numFrequencies]*Goertzel
	firstToneSampleIndex int64
	wordLength           int
	gateLength           int
	wordSilenceLength    int
	gate1Frequency       float32
	gate2Frequency       float32
	sampleRate           float32
	frequencies          [numFrequencies]float32
	trigger              *triggerAnalyzer

	symbolsToDeliver []byte
	symbolsCache     []byte
	headerCache      *Header
	pushedSamples    int64
	symbolIndex      int
	payload          []byte
	payloadLength    int
	fixedErrors      int

	rs     *ReedSolomon
	logger *log.Logger
}

// NewModem builds a Modem tuned for the given audio sample rate in Hz.
func NewModem(sampleRate float64) *Modem {
	m := &Modem{
		sampleRate:           float32(sampleRate),
		state:                stateWaitingTrigger,
		firstToneSampleIndex: -1,
		logger:               discardLogger(),
	}
	m.wordLength = int(sampleRate * wordTime)
	m.gateLength = int(sampleRate * gateTime)
	m.wordSilenceLength = int(sampleRate * wordSilenceTime)

	computeFrequencies(m.frequencies[:], 0)
	m.gate1Frequency = m.frequencies[frequencyRoot]
	m.gate2Frequency = m.frequencies[frequencyRoot+2]

	var closeFrequencies [numFrequencies]float32
	computeFrequencies(closeFrequencies[:], windowWidth)
	for idFreq := 0; idFreq < numFrequencies; idFreq++ {
		adaptativeWindow := computeMinimumWindowSize(m.sampleRate, m.frequencies[idFreq], closeFrequencies[idFreq])
		windowSize := m.wordLength
		if adaptativeWindow < windowSize {
			windowSize = adaptativeWindow
		}
		m.frequencyAnalyzers[idFreq] = NewGoertzel(m.sampleRate, m.frequencies[idFreq], windowSize, true)
	}

	m.trigger = newTriggerAnalyzer(m.sampleRate, m.gateLength, m.frequencyAnalyzers[frequencyRoot].WindowSize(),
		[2]float32{m.gate1Frequency, m.gate2Frequency}, defaultTriggerSNR)

	m.rs = NewReedSolomon(0x13, 16, 1)
	return m
}

// SetLevelCallback installs a diagnostic callback invoked once per
// trigger-analysis window with the two gate frequencies' SPL levels.
func (m *Modem) SetLevelCallback(fn LevelCallback) {
	m.trigger.levelCallback = fn
}

// SetLogger installs a structured logger for decode-path events (trigger
// lock, header accept/reject, RS correction, CRC outcome). A nil logger
// restores the default discard logger.
func (m *Modem) SetLogger(logger *log.Logger) {
	if logger == nil {
		logger = discardLogger()
	}
	m.logger = logger
}

func (m *Modem) toneLocation() int64 {
	return m.firstToneSampleIndex + int64(m.symbolIndex)*(int64(m.wordLength)+int64(m.wordSilenceLength)) + int64(m.wordSilenceLength)
}

func (m *Modem) toneIndex(samplesLength int) int {
	return samplesLength - int(m.pushedSamples-m.toneLocation())
}

// GetMaximumLength returns the largest sample count the caller should pass
// to the next PushSamples call: the modem never needs more than this to
// make forward progress, whether it is still waiting for the trigger or
// mid-frame.
func (m *Modem) GetMaximumLength() int {
	if m.state == stateWaitingTrigger {
		return m.trigger.maximumWindowLength()
	}
	return m.wordLength + int(m.pushedSamples-m.toneLocation())
}

// Reset drops all per-frame state and re-arms the trigger detector,
// called automatically after every decoded frame (successful or not).
func (m *Modem) Reset() {
	m.symbolsCache = nil
	m.headerCache = nil
	m.symbolsToDeliver = nil
	m.trigger.reset()
	for idFreq := range m.frequencyAnalyzers {
		m.frequencyAnalyzers[idFreq].Reset()
	}
	m.state = stateWaitingTrigger
	m.symbolIndex = 0
}

// payloadToSymbols encodes payload into block-interleaved
// Reed-Solomon-protected symbols, first appending its CRC-16 (high byte
// first) when hasCRC is set.
func (m *Modem) payloadToSymbols(payload []byte, blockSymbolsSize, blockECCSymbols int, hasCRC bool) ([]byte, error) {
	header := NewHeader(uint8(len(payload)), blockSymbolsSize, blockECCSymbols, hasCRC, 0)
	payloadBytes := payload
	if hasCRC {
		payloadBytes = make([]byte, len(payload)+crcByteLength)
		copy(payloadBytes, payload)
		var crc CRC16
		crc.AddArray(payload)
		payloadBytes[len(payload)] = byte(crc.Get() >> 8)
		payloadBytes[len(payload)+1] = byte(crc.Get() & 0xFF)
	}

	symbols := make([]byte, header.NumberOfSymbols)
	blockSymbols := make([]int32, blockSymbolsSize)
	for blockID := 0; blockID < header.NumberOfBlocks; blockID++ {
		for i := range blockSymbols {
			blockSymbols[i] = 0
		}
		payloadSize := header.PayloadByteSize
		if remaining := len(payloadBytes) - blockID*header.PayloadByteSize; remaining < payloadSize {
			payloadSize = remaining
		}
		for i := 0; i < payloadSize; i++ {
			b := payloadBytes[i+blockID*header.PayloadByteSize]
			blockSymbols[i*2] = int32(b>>4) & 0x0F
			blockSymbols[i*2+1] = int32(b) & 0x0F
		}
		if err := m.rs.Encode(blockSymbols, blockECCSymbols); err != nil {
			return nil, err
		}
		base := blockID * blockSymbolsSize
		for i := 0; i < payloadSize*2; i++ {
			symbols[base+i] = byte(blockSymbols[i] & 0xFF)
		}
		for i := 0; i < blockECCSymbols; i++ {
			symbols[base+payloadSize*2+i] = byte(blockSymbols[header.PayloadSymbolSize+i] & 0xFF)
		}
	}

	interleaveSymbols(symbols, blockSymbolsSize)
	return symbols, nil
}

// SetPayload stages payload for transmission using the default ECC level
// and a CRC-16 trailer, returning the number of samples GetSamples will
// need to render it.
func (m *Modem) SetPayload(payload []byte) int {
	return m.SetPayloadExt(payload, defaultECCLevel, true)
}

// SetPayloadExt stages payload for transmission with an explicit ECC level
// and CRC choice, returning the number of samples GetSamples will need.
// Returns 0 (and stages nothing) if eccLevel is out of range.
func (m *Modem) SetPayloadExt(payload []byte, eccLevel ECCLevel, addCRC bool) int {
	if eccLevel < ECCLow || eccLevel > ECCHigh {
		return 0
	}
	header := NewHeader(uint8(len(payload)), eccSymbols[eccLevel][0], eccSymbols[eccLevel][1], addCRC, eccLevel)

	m.symbolsToDeliver = make([]byte, header.NumberOfSymbols+headerSymbols)
	headerData := header.Encode()
	headerSymbolsEncoded, err := m.payloadToSymbols(headerData[:], headerSymbols, headerECCSymbols, false)
	if err != nil {
		m.logger.Warn("encode header failed", "err", err)
		return 0
	}
	copy(m.symbolsToDeliver, headerSymbolsEncoded)

	payloadSymbolsEncoded, err := m.payloadToSymbols(payload, eccSymbols[eccLevel][0], eccSymbols[eccLevel][1], addCRC)
	if err != nil {
		m.logger.Warn("encode payload failed", "err", err)
		return 0
	}
	copy(m.symbolsToDeliver[headerSymbols:], payloadSymbolsEncoded)

	m.logger.Info("payload staged", "bytes", len(payload), "eccLevel", eccLevel, "crc", addCRC, "symbols", len(m.symbolsToDeliver))
	return 2*m.gateLength + (len(m.symbolsToDeliver)/2)*(m.wordSilenceLength+m.wordLength)
}

func generatePitch(samples []float32, offset int, sampleRate, frequency, powerPeak float32) {
	tStep := 1.0 / sampleRate
	for i := range samples {
		samples[i] += float32(math.Sin(float64((float32(i+offset))*tStep*twoPi*frequency))) * powerPeak
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// GetSamples renders `samples` starting at the given sample offset within
// the staged transmission (set by SetPayload/SetPayloadExt), scaled by
// power. Tones are added to the buffer, which is not cleared first; the
// Hann (gate) or Tukey (word) window is then applied to the buffer in
// place, so content already present inside a gate or word interval is
// scaled by that window as well. Call with increasing offsets to stream a
// long transmission in chunks.
func (m *Modem) GetSamples(samples []float32, offset int, power float32) {
	samplesLength := len(samples)
	cursor := 0

	// First gate tone.
	if cursor+m.gateLength-offset >= 0 {
		n := maxInt(0, minInt(m.gateLength-maxInt(0, offset-cursor), samplesLength-maxInt(0, cursor-offset)))
		start := maxInt(0, cursor-offset)
		o := maxInt(0, offset-cursor)
		generatePitch(samples[start:start+n], o, m.sampleRate, m.gate1Frequency, power)
		applyHannWindow(samples[start:start+n], n, m.gateLength, o)
	}
	cursor += m.gateLength
	if cursor > offset+samplesLength {
		return
	}

	// Second gate tone.
	if cursor+m.gateLength-offset >= 0 {
		n := maxInt(0, minInt(m.gateLength-maxInt(0, offset-cursor), samplesLength-maxInt(0, cursor-offset)))
		start := maxInt(0, cursor-offset)
		o := maxInt(0, offset-cursor)
		generatePitch(samples[start:start+n], o, m.sampleRate, m.gate2Frequency, power)
		applyHannWindow(samples[start:start+n], n, m.gateLength, o)
	}
	cursor += m.gateLength
	if cursor > offset+samplesLength {
		return
	}

	// Symbol words.
	for i := 0; i < len(m.symbolsToDeliver); i += 2 {
		cursor += m.wordSilenceLength
		if cursor+m.wordLength-offset >= 0 {
			f1 := m.frequencies[m.symbolsToDeliver[i]]
			f2 := m.frequencies[int(m.symbolsToDeliver[i+1])+frequencyRoot]
			n := maxInt(0, minInt(m.wordLength-maxInt(0, offset-cursor), samplesLength-maxInt(0, cursor-offset)))
			start := maxInt(0, cursor-offset)
			o := maxInt(0, offset-cursor)
			generatePitch(samples[start:start+n], o, m.sampleRate, f1, power/2)
			generatePitch(samples[start:start+n], o, m.sampleRate, f2, power/2)
			applyTukeyWindow(samples[start:start+n], tukeyAlpha, n, m.wordLength, o)
		}
		cursor += m.wordLength
		if cursor > offset+samplesLength {
			return
		}
	}
}

// symbolsToPayload reverses payloadToSymbols: de-interleaves, runs
// Reed-Solomon correction per block, and (if hasCRC) validates the
// trailing CRC-16. Returns nil if any block is uncorrectable or the CRC
// fails.
func (m *Modem) symbolsToPayload(symbols []byte, blockSymbolsSize, blockECCSymbols int, hasCRC bool) []byte {
	payloadSymbolsSize := blockSymbolsSize - blockECCSymbols
	payloadByteSize := payloadSymbolsSize / 2
	rem := len(symbols) % blockSymbolsSize
	remTerm := rem - blockECCSymbols
	if remTerm < 0 {
		remTerm = 0
	}
	payloadLength := ((len(symbols)/blockSymbolsSize)*payloadSymbolsSize + remTerm) / 2
	numberOfBlocks := ceilDiv(len(symbols), blockSymbolsSize)

	deinterleaveSymbols(symbols, blockSymbolsSize)

	offset := 0
	if hasCRC {
		offset = -crcByteLength
	}
	payload := make([]byte, payloadLength+offset)
	var crcValue [crcByteLength]int32
	crcIndex := 0

	blockSymbols := make([]int32, blockSymbolsSize)
	for blockID := 0; blockID < numberOfBlocks; blockID++ {
		for i := range blockSymbols {
			blockSymbols[i] = 0
		}
		payloadSymbolsLength := payloadSymbolsSize
		if v := len(symbols) - blockECCSymbols - blockID*blockSymbolsSize; v < payloadSymbolsLength {
			payloadSymbolsLength = v
		}
		base := blockID * blockSymbolsSize
		for i := 0; i < payloadSymbolsLength; i++ {
			blockSymbols[i] = int32(symbols[base+i])
		}
		for i := 0; i < blockECCSymbols; i++ {
			blockSymbols[payloadSymbolsSize+i] = int32(symbols[base+payloadSymbolsLength+i])
		}

		if err := Decode(m.rs.Field(), blockSymbols, blockECCSymbols, &m.fixedErrors); err != nil {
			m.logger.Warn("reed-solomon block uncorrectable", "block", blockID, "err", err)
			return nil
		}

		payloadBlockByteSize := payloadByteSize
		if v := payloadLength + offset - blockID*payloadByteSize; v < payloadBlockByteSize {
			payloadBlockByteSize = v
		}
		for i := 0; i < payloadBlockByteSize; i++ {
			payload[i+blockID*payloadByteSize] = byte((blockSymbols[i*2] << 4) | (blockSymbols[i*2+1] & 0x0F))
		}
		if hasCRC {
			maxi := payloadByteSize
			if v := payloadLength - blockID*payloadByteSize; v < maxi {
				maxi = v
			}
			for i := maxInt(0, payloadBlockByteSize); i < maxi; i++ {
				crcValue[crcIndex] = (blockSymbols[i*2] << 4) | (blockSymbols[i*2+1] & 0x0F)
				crcIndex++
			}
		}
	}

	if hasCRC {
		storedCRC := (crcValue[0] << 8) | crcValue[1]
		var crc16 CRC16
		crc16.AddArray(payload[:payloadLength+offset])
		if crc16.Get() != storedCRC {
			m.logger.Warn("payload crc mismatch")
			return nil
		}
	}
	return payload
}

func (m *Modem) feedTriggerAnalyzer(totalProcessed int64, samples []float32) {
	m.trigger.processSamples(totalProcessed, samples)
	if m.trigger.firstToneLocation != -1 {
		m.state = stateParsingSymbols
		m.payload = nil
		m.payloadLength = 0
		m.firstToneSampleIndex = m.trigger.firstToneLocation
		for idFreq := range m.frequencyAnalyzers {
			m.frequencyAnalyzers[idFreq].Reset()
		}
		m.symbolsCache = make([]byte, headerSymbols)
		m.trigger.reset()
		m.fixedErrors = 0
		m.logger.Info("trigger locked", "sampleIndex", m.firstToneSampleIndex)
	}
}

func (m *Modem) cachedSymbolsToPayload() {
	m.payload = m.symbolsToPayload(m.symbolsCache, eccSymbols[m.headerCache.ECCLevel][0], eccSymbols[m.headerCache.ECCLevel][1], m.headerCache.CRC)
	m.payloadLength = int(m.headerCache.Length)
}

func (m *Modem) cachedSymbolsToHeader() {
	headerBytes := m.symbolsToPayload(m.symbolsCache, headerSymbols, headerECCSymbols, false)
	if headerBytes != nil {
		h, ok := DecodeHeader(headerBytes)
		if ok {
			m.headerCache = &h
		} else {
			m.headerCache = nil
		}
	}
}

// analyzeTones demodulates symbols once the trigger has locked onto a
// frame, returning true once a complete payload has been decoded and
// validated. A frame that fails validation re-arms the modem and returns
// false, leaving GetPayload nil.
func (m *Modem) analyzeTones(samples []float32) bool {
	samplesLength := len(samples)
	processedSamples := int(m.pushedSamples) - samplesLength - int(m.toneLocation())
	cursor := maxInt(0, m.toneIndex(samplesLength))

	for cursor < samplesLength {
		toneWindowCursor := processedSamples + cursor
		cursorIncrement := minInt(samplesLength-cursor, m.wordLength-toneWindowCursor)

		for idFreq := 0; idFreq < numFrequencies; idFreq++ {
			analyzer := m.frequencyAnalyzers[idFreq]
			startWindow := m.wordLength/2 - analyzer.WindowSize()/2
			startAnalyze := maxInt(0, startWindow-toneWindowCursor) + cursor
			analyzeLength := minInt(samplesLength-startAnalyze, analyzer.WindowSize()-analyzer.ProcessedSamples())
			if analyzeLength > 0 && startAnalyze < samplesLength {
				analyzer.ProcessSamples(samples[startAnalyze : startAnalyze+analyzeLength])
			}
		}

		if toneWindowCursor+cursorIncrement == m.wordLength {
			var spl [numFrequencies]float32
			for idFreq := 0; idFreq < numFrequencies; idFreq++ {
				rms := m.frequencyAnalyzers[idFreq].ComputeRMS()
				spl[idFreq] = 20.0 * float32(math.Log10(float64(rms)))
			}
			for symbolOffset := 0; symbolOffset < 2; symbolOffset++ {
				maxSymbolID := -1
				maxSymbolGain := float32(-99999999999999.9)
				for idFreq := symbolOffset * frequencyRoot; idFreq < (symbolOffset+1)*frequencyRoot; idFreq++ {
					if spl[idFreq] > maxSymbolGain {
						maxSymbolGain = spl[idFreq]
						maxSymbolID = idFreq
					}
				}
				m.symbolsCache[m.symbolIndex*2+symbolOffset] = byte(maxSymbolID - symbolOffset*frequencyRoot)
			}
			m.symbolIndex++
			processedSamples = int(m.pushedSamples) - samplesLength - int(m.toneLocation())
			cursor = maxInt(cursor, m.toneIndex(samplesLength))

			if m.symbolIndex*2 == len(m.symbolsCache) {
				if m.headerCache == nil {
					m.cachedSymbolsToHeader()
					if m.headerCache == nil {
						m.logger.Warn("header crc rejected")
						m.Reset()
						break
					}
					m.logger.Info("header accepted", "length", m.headerCache.Length, "eccLevel", m.headerCache.ECCLevel, "crc", m.headerCache.CRC)
					m.symbolsCache = make([]byte, m.headerCache.NumberOfSymbols)
					m.symbolIndex = 0
					m.firstToneSampleIndex += int64(headerSymbols/2) * (int64(m.wordLength) + int64(m.wordSilenceLength))
				}
				if m.symbolIndex*2 == len(m.symbolsCache) {
					m.cachedSymbolsToPayload()
					if m.payload == nil {
						m.logger.Warn("payload rejected")
					} else {
						m.logger.Info("payload decoded", "length", m.payloadLength, "fixedErrors", m.fixedErrors)
					}
					m.Reset()
					return m.payload != nil
				}
			}
		}
		cursor += cursorIncrement
	}
	return false
}

// PushSamples feeds the next chunk of audio (at most GetMaximumLength
// samples) into the modem, returning true exactly when a complete,
// successfully-validated payload is now available via GetPayload.
func (m *Modem) PushSamples(samples []float32) bool {
	m.pushedSamples += int64(len(samples))
	if m.state == stateWaitingTrigger {
		m.feedTriggerAnalyzer(m.pushedSamples-int64(len(samples)), samples)
	}
	if m.state == stateParsingSymbols {
		return m.analyzeTones(samples)
	}
	return false
}

// GetPayload returns the most recently decoded payload, or nil if the last
// frame failed CRC/Reed-Solomon validation.
func (m *Modem) GetPayload() []byte {
	return m.payload
}

// GetPayloadLength returns the declared length of the most recently
// decoded payload (valid even when GetPayload returns nil for a CRC
// failure, since the header length field is recovered before the payload
// body is).
func (m *Modem) GetPayloadLength() int {
	return m.payloadLength
}

// GetFixedErrors returns how many symbol errors Reed-Solomon corrected
// across the most recently decoded frame.
func (m *Modem) GetFixedErrors() int {
	return m.fixedErrors
}

// GetPayloadSampleIndex returns the sample index, within the whole pushed
// stream, where the decoded frame's first gate tone began.
func (m *Modem) GetPayloadSampleIndex() int64 {
	return m.firstToneSampleIndex - int64(headerSymbols/2)*(int64(m.wordLength)+int64(m.wordSilenceLength)) - int64(m.gateLength)*2
}
