package scanning

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func encodePNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x += 10 {
		img.Set(x, 0, color.Black)
	}
	var buf bytes.Buffer
	Expect(png.Encode(&buf, img)).To(Succeed())
	return buf.Bytes()
}

var _ = Describe("isHEICFormat", func() {
	It("should detect the heic brand", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypheic\x00\x00\x00\x00"))).To(BeTrue())
	})

	It("should detect the mif1 brand", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypmif1\x00\x00\x00\x00"))).To(BeTrue())
	})

	It("should reject other ftyp brands", func() {
		Expect(isHEICFormat([]byte("\x00\x00\x00\x18ftypisom\x00\x00\x00\x00"))).To(BeFalse())
	})

	It("should reject short data", func() {
		Expect(isHEICFormat([]byte("ftyp"))).To(BeFalse())
	})
})

var _ = Describe("prepareImage", func() {
	var (
		data        []byte
		contentType string
		prepared    *preparedImage
		err         error
	)

	JustBeforeEach(func() {
		prepared, err = prepareImage(data, contentType, 2000)
	})

	When("the image is a small PNG", func() {
		BeforeEach(func() {
			data = encodePNG(100, 50)
			contentType = "image/png"
		})

		It("should pass the data through unchanged", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(prepared.converted).To(BeFalse())
			Expect(prepared.data).To(Equal(data))
			Expect(prepared.mimeType).To(Equal("image/png"))
		})
	})

	When("the image is larger than the maximum dimension", func() {
		BeforeEach(func() {
			data = encodePNG(3000, 1000)
			contentType = "image/png"
		})

		It("should downscale it", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(prepared.converted).To(BeTrue())
			Expect(prepared.mimeType).To(Equal("image/png"))

			cfg, _, decodeErr := image.DecodeConfig(bytes.NewReader(prepared.data))
			Expect(decodeErr).NotTo(HaveOccurred())
			Expect(cfg.Width).To(Equal(2000))
			Expect(cfg.Height).To(BeNumerically("<=", 2000))
		})
	})

	When("the format is unknown to the decoders", func() {
		BeforeEach(func() {
			data = []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")
			contentType = " Image/WebP "
		})

		It("should pass the data through with the normalized MIME type", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(prepared.data).To(Equal(data))
			Expect(prepared.mimeType).To(Equal("image/webp"))
		})
	})

	When("no content type is given", func() {
		BeforeEach(func() {
			data = []byte("opaque")
			contentType = ""
		})

		It("should default to JPEG", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(prepared.mimeType).To(Equal("image/jpeg"))
		})
	})

	When("a PNG header is truncated", func() {
		BeforeEach(func() {
			data = []byte("\x89PNG\r\n\x1a\njunk")
			contentType = "image/png"
		})

		It("should return ErrImageDecode", func() {
			Expect(errors.Is(err, ErrImageDecode)).To(BeTrue())
		})
	})

	When("a HEIC upload cannot be decoded", func() {
		BeforeEach(func() {
			data = []byte("not really a heic file")
			contentType = "image/heic"
		})

		It("should return ErrImageDecode", func() {
			Expect(errors.Is(err, ErrImageDecode)).To(BeTrue())
		})
	})
})
