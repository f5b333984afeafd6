package digest_test

import (
	"encoding/base64"
	"testing"

	"github.com/okian/pcbvalues/internal/domain/digest"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFingerprint(t *testing.T) {
	Convey("Given a finalized score string", t, func() {
		s := "50.0,50.0,50.0,50.0,50.0,50.0,50.0"

		Convey("Then the fingerprint is the base64 SHA-512 digest", func() {
			So(digest.Fingerprint(s), ShouldEqual,
				"lgLFo/WonXzzhEtBinS7tvUWiPCtwtVsFZlF0Y4EKYOXIyvfXRX0dNRfT0N8/o4Mu4kvNMdXOTjZUGJbLJagdg==")
		})

		Convey("Then it decodes to 64 raw bytes", func() {
			raw, err := base64.StdEncoding.DecodeString(digest.Fingerprint(s))
			So(err, ShouldBeNil)
			So(len(raw), ShouldEqual, 64)
		})

		Convey("Then repeated calls are deterministic", func() {
			So(digest.Fingerprint(s), ShouldEqual, digest.Fingerprint(s))
		})

		Convey("Then a single changed digit changes the token", func() {
			So(digest.Fingerprint(s), ShouldNotEqual, digest.Fingerprint("50.0,50.0,50.0,50.0,50.0,50.0,50.1"))
		})
	})

	Convey("Given the empty string", t, func() {
		So(digest.Fingerprint(""), ShouldEqual,
			"z4PhNX7vuL3xVChQ1m2AB9Yg5AULVxXcg/SpIdNs6c5H0NE8XYXysP+DGNKHfuwvY7kxvUdBeoGlODJ6+SfaPg==")
	})
}

func TestVerify(t *testing.T) {
	Convey("Given a score string and its token", t, func() {
		s := "10.0,20.0"
		token := digest.Fingerprint(s)

		So(digest.Verify(s, token), ShouldBeTrue)
		So(digest.Verify("10.0,20.1", token), ShouldBeFalse)
		So(digest.Verify(s, ""), ShouldBeFalse)
	})
}
