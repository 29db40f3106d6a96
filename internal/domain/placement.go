package domain

import "fmt"

// Pallet is a placement aid for loose packages. Capacity is informational
// and never checked against what is loaded.
type Pallet struct {
	SerialNumber string
	Capacity     int
}

func (p Pallet) String() string {
	return fmt.Sprintf("Pallet(SerialNumber=%s, Capacity=%d)", p.SerialNumber, p.Capacity)
}

// Placement describes where a package was put when it was added.
// It is reported to observers and then discarded.
type Placement struct {
	Warehouse  string
	RackSerial string
	LineNumber int
	Pallet     *Pallet
}

// Messages returns the confirmation lines for a completed placement.
func (p Placement) Messages() []string {
	msgs := []string{
		fmt.Sprintf("Package loaded into Warehouse: %s, Rack: %s, Line: %d", p.Warehouse, p.RackSerial, p.LineNumber),
	}
	if p.Pallet != nil {
		msgs = append(msgs, fmt.Sprintf("Package placed on Pallet: %s", p.Pallet.SerialNumber))
	}
	return msgs
}
