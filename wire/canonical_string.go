package wire

import "github.com/veriform-go/veriform/verror"

// CheckCanonicalString validates s against veriform's canonical string
// subset. The reference core enforces a conservative canonical form —
// ASCII only — rejecting anything else and reserving the option to widen
// to Unicode NFC in a future revision (spec §3, §4.4).
func CheckCanonicalString(s string) error {
	for i := 0; i < len(s); i++ {
		if s[i] > 0x7f {
			return verror.New(verror.UnicodeNormalization)
		}
	}
	return nil
}
