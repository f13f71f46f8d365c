package jailconfig

import (
	"crypto/rand"
	"fmt"
)

// NormalizeNICs fills in autogenerated MACs for any NIC that didn't specify one. Generated
// addresses use the locally-administered, unicast prefix 02, matching spec §3's
// "autogenerated 02:xx:xx:xx:xx:xx if absent".
func NormalizeNICs(nics []NIC) error {
	for i := range nics {
		if nics[i].MAC != "" {
			continue
		}
		mac, err := randomLocalMAC()
		if err != nil {
			return fmt.Errorf("generating mac for nic %d: %w", i, err)
		}
		nics[i].MAC = mac
	}
	return nil
}

func randomLocalMAC() (string, error) {
	buf := make([]byte, 5)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return fmt.Sprintf("02:%02x:%02x:%02x:%02x:%02x", buf[0], buf[1], buf[2], buf[3], buf[4]), nil
}

// Primary returns the first NIC flagged primary, if any.
func Primary(nics []NIC) (NIC, bool) {
	for _, n := range nics {
		if n.Primary {
			return n, true
		}
	}
	return NIC{}, false
}
