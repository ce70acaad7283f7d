package circuits

import (
	"fmt"
	"log"
	"math/big"
	"os"

	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
)

// FrontendError function is an in-circuit function to print an error message
// and an error trace, making the circuit fail.
func FrontendError(api frontend.API, msg string, trace error) {
	err := fmt.Errorf("%s", msg)
	if trace != nil {
		err = fmt.Errorf("%w: %v", err, trace)
	}
	api.Println(err.Error())
	api.AssertIsEqual(1, 0)
}

// BigIntArrayToStringArray converts the big.Int array to a decimal string
// array.
func BigIntArrayToStringArray(arr []*big.Int) []string {
	strArr := []string{}
	for _, b := range arr {
		strArr = append(strArr, b.String())
	}
	return strArr
}

// StoreConstraintSystem stores the constraint system in a file.
func StoreConstraintSystem(cs constraint.ConstraintSystem, filepath string) error {
	csFd, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer csFd.Close()
	if _, err := cs.WriteTo(csFd); err != nil {
		return err
	}
	log.Printf("constraint system written to %s", filepath)
	return nil
}

// StoreProvingKey stores the proving key in a file.
func StoreProvingKey(pk groth16.ProvingKey, filepath string) error {
	fd, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer fd.Close()
	if _, err := pk.WriteRawTo(fd); err != nil {
		return err
	}
	log.Printf("proving key written to %s", filepath)
	return nil
}

// StoreVerificationKey stores the verification key in a file.
func StoreVerificationKey(vkey groth16.VerifyingKey, filepath string) error {
	fd, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer fd.Close()
	if _, err := vkey.WriteRawTo(fd); err != nil {
		return err
	}
	log.Printf("verification key written to %s", filepath)
	return nil
}

// LoadConstraintSystem loads a constraint system from a file.
func LoadConstraintSystem(filepath string) (constraint.ConstraintSystem, error) {
	fd, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	cs := groth16.NewCS(TierProofCurve)
	if _, err := cs.ReadFrom(fd); err != nil {
		return nil, err
	}
	return cs, nil
}

// LoadProvingKey loads a proving key from a file.
func LoadProvingKey(filepath string) (groth16.ProvingKey, error) {
	fd, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	pk := groth16.NewProvingKey(TierProofCurve)
	if _, err := pk.UnsafeReadFrom(fd); err != nil {
		return nil, err
	}
	return pk, nil
}

// LoadVerifyingKey loads a verification key from a file.
func LoadVerifyingKey(filepath string) (groth16.VerifyingKey, error) {
	fd, err := os.Open(filepath)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	vk := groth16.NewVerifyingKey(TierProofCurve)
	if _, err := vk.ReadFrom(fd); err != nil {
		return nil, err
	}
	return vk, nil
}
