package encoder

import (
	"bytes"
	"encoding/hex"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/proofoflove/zktier/prover"
)

// bn254 base field modulus, big-endian hex.
const fpModHex = "30644e72e131a029b85045b68181585d97816a916871ca8d3c208c16d87cfd47"

func be32(t *testing.T, hexStr string) []byte {
	t.Helper()
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]byte, 32)
	copy(out[32-len(b):], b)
	return out
}

func TestEncodeAYNegation(t *testing.T) {
	c := qt.New(t)

	// y = 1 encodes as p - 1
	a, err := EncodeA(prover.G1Point{X: "5", Y: "1"})
	c.Assert(err, qt.IsNil)
	c.Assert(a[:32], qt.DeepEquals, be32(t, "05"))
	c.Assert(a[32:], qt.DeepEquals, be32(t, "30644e72e131a029b85045b68181585d97816a916871ca8d3c208c16d87cfd46"))

	// y = 0 stays 0
	a, err = EncodeA(prover.G1Point{X: "7", Y: "0"})
	c.Assert(err, qt.IsNil)
	c.Assert(bytes.Equal(a[32:], make([]byte, 32)), qt.IsTrue)

	// negation is an involution on the raw value: encode(p-1) gives back 1
	a, err = EncodeA(prover.G1Point{
		X: "7",
		Y: "21888242871839275222246405745257275088696311157297823662689037894645226208582", // p - 1
	})
	c.Assert(err, qt.IsNil)
	c.Assert(a[32:], qt.DeepEquals, be32(t, "01"))
}

func TestEncodeCUnmodified(t *testing.T) {
	c := qt.New(t)

	out, err := EncodeC(prover.G1Point{X: "3", Y: "4"})
	c.Assert(err, qt.IsNil)
	c.Assert(out[:32], qt.DeepEquals, be32(t, "03"))
	c.Assert(out[32:], qt.DeepEquals, be32(t, "04"))
}

func TestEncodeBCoordinateSwap(t *testing.T) {
	c := qt.New(t)

	out, err := EncodeB(prover.G2Point{
		X: [2]string{"1", "2"}, // (c0, c1)
		Y: [2]string{"3", "4"},
	})
	c.Assert(err, qt.IsNil)
	// target layout: x.c1, x.c0, y.c1, y.c0
	c.Assert(out[0:32], qt.DeepEquals, be32(t, "02"))
	c.Assert(out[32:64], qt.DeepEquals, be32(t, "01"))
	c.Assert(out[64:96], qt.DeepEquals, be32(t, "04"))
	c.Assert(out[96:128], qt.DeepEquals, be32(t, "03"))
}

func TestEncodeSignals(t *testing.T) {
	c := qt.New(t)

	sigs, err := EncodeSignals([4]string{"5000000", "25000000", "12345", "1700000000"})
	c.Assert(err, qt.IsNil)
	c.Assert(sigs[0][:], qt.DeepEquals, be32(t, "4c4b40"))
	c.Assert(sigs[1][:], qt.DeepEquals, be32(t, "017d7840"))
	c.Assert(sigs[2][:], qt.DeepEquals, be32(t, "3039"))
	c.Assert(sigs[3][:], qt.DeepEquals, be32(t, "6553f100"))
}

func TestEncodeMalformedInput(t *testing.T) {
	c := qt.New(t)

	_, err := EncodeC(prover.G1Point{X: "not-a-number", Y: "1"})
	c.Assert(err, qt.IsNotNil)
	_, err = EncodeC(prover.G1Point{X: "-5", Y: "1"})
	c.Assert(err, qt.IsNotNil)
	_, err = EncodeSignals([4]string{"1", "2", "3", "0x12"})
	c.Assert(err, qt.IsNotNil)

	// coordinate at the modulus is out of field
	mod := "21888242871839275222246405745257275088696311157297823662689037894645226208583"
	_, err = EncodeC(prover.G1Point{X: mod, Y: "1"})
	c.Assert(err, qt.IsNotNil)
}

func TestEncodeGoldenFixture(t *testing.T) {
	c := qt.New(t)

	proof := &prover.Proof{
		A: prover.G1Point{X: "1", Y: "2"},
		B: prover.G2Point{
			X: [2]string{"10857046999023057135944570762232829481370756359578518086990519993285655852781",
				"11559732032986387107991004021392285783925812861821192530917403151452391805634"},
			Y: [2]string{"8495653923123431417604973247489272438418190587263600148770280649306958101930",
				"4082367875863433681332203403145435568316851327593401208105741076214120093531"},
		},
		C:             prover.G1Point{X: "3", Y: "4"},
		PublicSignals: [4]string{"0", "100000", "1", "2"},
	}
	enc, err := Encode(proof)
	c.Assert(err, qt.IsNil)

	// A: x = 1, y = -2 mod p
	c.Assert(enc.A[:32], qt.DeepEquals, be32(t, "01"))
	c.Assert(enc.A[32:], qt.DeepEquals, be32(t, "30644e72e131a029b85045b68181585d97816a916871ca8d3c208c16d87cfd45"))

	// B is the generator of G2 with pairs swapped; spot check first word
	c.Assert(hex.EncodeToString(enc.B[:32]), qt.Equals,
		"198e9393920d483a7260bfb731fb5d25f1aa493335a9e71297e485b7aef312c2")

	c.Assert(enc.C[:32], qt.DeepEquals, be32(t, "03"))
	c.Assert(enc.C[32:], qt.DeepEquals, be32(t, "04"))
	c.Assert(enc.PublicInputs[1][:], qt.DeepEquals, be32(t, "0186a0"))
}
