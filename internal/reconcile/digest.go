package reconcile

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainInputs prefixes the input digest. The version suffix allows the
// layout to change without colliding with old digests.
const DomainInputs = "pilecap/inputs/v1"

// inputsDigest hashes the resolver inputs exactly as written, with domain
// separation. Equal digests across runs mean the resolver saw equal inputs.
func inputsDigest(files []inputFile) string {
	h := sha256.New()
	h.Write([]byte(DomainInputs))
	h.Write([]byte{0x00})
	for _, f := range files {
		h.Write([]byte(f.name()))
		h.Write([]byte{0x00})
		h.Write([]byte(render(f.Lines)))
		h.Write([]byte{0x00})
	}
	return hex.EncodeToString(h.Sum(nil))
}
