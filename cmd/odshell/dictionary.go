package main

import (
	"github.com/gpcc-project/gpcc/cood"
	"github.com/gpcc-project/gpcc/osal"
)

// buildDemoDictionary populates od with a handful of objects
// representative of a small CANopen device profile: a read-only device
// type, a read/write scalar, a growable array, and a bit-packed
// record. It exists so the shell has something to browse without
// requiring an external EDS file.
func buildDemoDictionary(t *osal.Thread, od *cood.ObjectDictionary) error {
	deviceType := make([]byte, 4)
	deviceType[0] = 0x91 // low byte of profile 401-ish device type, arbitrary demo value

	v1000, err := cood.NewVariable("Device type", cood.Unsigned32, 1, deviceType, cood.AttrAccessRD, nil, nil)
	if err != nil {
		return err
	}

	if err := od.Add(t, v1000, 0x1000); err != nil {
		return err
	}

	demoVarMu := osal.NewMutex()
	demoVar := make([]byte, 2)

	v2000, err := cood.NewVariable("Demo value", cood.Integer16, 1, demoVar, cood.AttrAccessRW, demoVarMu, nil)
	if err != nil {
		return err
	}

	if err := od.Add(t, v2000, 0x2000); err != nil {
		return err
	}

	demoArrMu := osal.NewMutex()
	demoArr := make([]byte, 4)

	a2001, err := cood.NewArray("Demo array", cood.Unsigned8, 4, 2, demoArr, cood.AttrAccessRW, true, demoArrMu, nil)
	if err != nil {
		return err
	}

	if err := od.Add(t, a2001, 0x2001); err != nil {
		return err
	}

	// Matches the record example used elsewhere to describe
	// CompleteWrite's bit-stuffed commit path: SI1 an RW uint16, SI2
	// a read-only boolean packed into the byte right after it.
	demoRecMu := osal.NewMutex()
	demoRec := make([]byte, 4)

	r2002, err := cood.NewRecord("Demo record", demoRec, 4, demoRecMu, []cood.SubIdxDescr{
		{Name: "a", Type: cood.Unsigned16, NElements: 1, Attributes: cood.AttrAccessRW, ByteOffset: 0, BitOffset: 0},
		{Name: "b", Type: cood.Boolean, NElements: 1, Attributes: cood.AttrAccessRD, ByteOffset: 2, BitOffset: 0},
	}, nil)
	if err != nil {
		return err
	}

	return od.Add(t, r2002, 0x2002)
}
