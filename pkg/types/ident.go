package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	rePLMN   = regexp.MustCompile(`^\d{3}-\d{2,3}$`)
	reSNSSAI = regexp.MustCompile(`^[\da-f]{2}(?:[\da-f]{6})?$`)
	reTAC    = regexp.MustCompile(`^[\da-f]{6}$`)
	reNCI    = regexp.MustCompile(`^(?:0x)?[\da-f]{9}$`)
	reSUPI   = regexp.MustCompile(`^\d{15}$`)
	reKey    = regexp.MustCompile(`^[\da-f]{32}$`)
)

// SDFilled is used in place of an absent SD.
const SDFilled string = "FFFFFF"

type PLMN struct {
	MCC string
	MNC string
}

func (p PLMN) MCCInt() int {
	v, _ := strconv.Atoi(p.MCC)
	return v
}

func (p PLMN) MNCInt() int {
	v, _ := strconv.Atoi(p.MNC)
	return v
}

func SplitPLMN(plmn string) (PLMN, error) {
	if !rePLMN.MatchString(plmn) {
		return PLMN{}, fmt.Errorf("invalid PLMN %q", plmn)
	}
	sep := strings.SplitN(plmn, "-", 2)
	return PLMN{MCC: sep[0], MNC: sep[1]}, nil
}

// SNSSAI holds a decoded slice identifier; SD is empty when absent.
type SNSSAI struct {
	SST int
	SD  string
}

func (s SNSSAI) SSTHex() string {
	return fmt.Sprintf("%02x", s.SST)
}

func (s SNSSAI) SDInt() (int, bool) {
	if s.SD == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s.SD, 16, 32)
	if err != nil {
		return 0, false
	}
	return int(v), true
}

func SplitSNSSAI(snssai string) (SNSSAI, error) {
	s := strings.ToLower(snssai)
	if !reSNSSAI.MatchString(s) {
		return SNSSAI{}, fmt.Errorf("invalid S-NSSAI %q", snssai)
	}
	sst, _ := strconv.ParseInt(s[:2], 16, 16)
	return SNSSAI{SST: int(sst), SD: s[2:]}, nil
}

// SplitSNSSAIFilled is SplitSNSSAI with an absent SD replaced by SDFilled.
func SplitSNSSAIFilled(snssai string) (SNSSAI, error) {
	s, err := SplitSNSSAI(snssai)
	if err != nil {
		return s, err
	}
	if s.SD == "" {
		s.SD = SDFilled
	}
	return s, nil
}

func ParseNCI(nci string) (uint64, error) {
	s := strings.ToLower(nci)
	if !reNCI.MatchString(s) {
		return 0, fmt.Errorf("invalid NCI %q", nci)
	}
	return strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
}

func FormatNCI(nci uint64) string {
	return fmt.Sprintf("%09x", nci)
}

func cellBits(gnbIDLength int) uint {
	return uint(NCIBits - gnbIDLength)
}

// SplitNCI slices a 36-bit NCI into gNB ID (high gnbIDLength bits) and cell ID.
func SplitNCI(nci uint64, gnbIDLength int) (gnbID uint64, cellID uint64) {
	bits := cellBits(gnbIDLength)
	return nci >> bits, nci & (1<<bits - 1)
}

func ComposeNCI(gnbID uint64, cellID uint64, gnbIDLength int) uint64 {
	bits := cellBits(gnbIDLength)
	return gnbID<<bits | cellID&(1<<bits-1)
}

// DefaultNCI is the NCI of the i-th gNB when none is given.
func DefaultNCI(i int, gnbIDLength int) uint64 {
	return uint64(i+1)<<cellBits(gnbIDLength) | 0xF
}

// IncrementSUPI adds delta to a decimal SUPI keeping its width.
func IncrementSUPI(supi string, delta int) (string, error) {
	v, err := strconv.ParseUint(supi, 10, 64)
	if err != nil {
		return "", fmt.Errorf("invalid SUPI %q", supi)
	}
	s := fmt.Sprintf("%0*d", len(supi), v+uint64(delta))
	if len(s) != len(supi) {
		return "", fmt.Errorf("SUPI %s + %d overflows %d digits", supi, delta, len(supi))
	}
	return s, nil
}
