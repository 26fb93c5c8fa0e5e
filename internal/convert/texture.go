package convert

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/mauserzjeh/dxt"
	"github.com/pierrec/lz4/v4"

	"trailbloom/internal/utils"
)

// MaxTexDimension bounds the mipmap width and height a .tex header may
// declare.
const MaxTexDimension = 16384

// .tex pixel formats.
const (
	texFormatRGBA8888 = 0
	texFormatDXT5     = 4
	texFormatDXT3     = 6
	texFormatDXT1     = 7
	texFormatRG88     = 8
	texFormatR8       = 9
)

// texReader reads little-endian fields and keeps the first error.
type texReader struct {
	r   io.Reader
	err error
}

func (t *texReader) u32() uint32 {
	var v uint32
	if t.err == nil {
		t.err = binary.Read(t.r, binary.LittleEndian, &v)
	}
	return v
}

// magic reads an n-byte tag followed by its NUL terminator.
func (t *texReader) magic(n int) string {
	b := make([]byte, n+1)
	if t.err == nil {
		_, t.err = io.ReadFull(t.r, b)
	}
	return string(bytes.TrimRight(b, "\x00"))
}

func (t *texReader) bytes(n uint32) []byte {
	if t.err != nil {
		return nil
	}
	b := make([]byte, n)
	_, t.err = io.ReadFull(t.r, b)
	return b
}

// DecodeTexFile decodes the first mipmap of a .tex file.
func DecodeTexFile(path string) (image.Image, error) {
	utils.Debug("Decoding texture: %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTex(f)
}

// DecodeTex decodes the first mipmap of a TEXV0005 texture stream and
// crops it to the declared image size.
func DecodeTex(r io.Reader) (image.Image, error) {
	tr := &texReader{r: r}

	if m := tr.magic(8); m != "TEXV0005" {
		if tr.err != nil {
			return nil, tr.err
		}
		return nil, fmt.Errorf("invalid magic: %q", m)
	}
	_ = tr.magic(8) // TEXI0001

	format := tr.u32()
	_ = tr.u32() // flags
	_ = tr.u32() // texture width
	_ = tr.u32() // texture height
	imgW := tr.u32()
	imgH := tr.u32()
	_ = tr.u32()

	container := tr.magic(8)
	imageCount := tr.u32()
	if container == "TEXB0003" {
		_ = tr.u32()
	}
	if tr.err != nil {
		return nil, fmt.Errorf("tex header: %w", tr.err)
	}
	utils.Debug("    Format: %d, Image Size: %dx%d, Container: %s", format, imgW, imgH, container)

	if imageCount == 0 {
		return nil, fmt.Errorf("no image found in texture")
	}
	if mipmaps := tr.u32(); mipmaps == 0 {
		return nil, fmt.Errorf("no mipmap found in texture")
	}

	mW, mH := tr.u32(), tr.u32()
	var compressed bool
	var decompressedSize uint32
	if container != "TEXB0001" {
		compressed = tr.u32() == 1
		decompressedSize = tr.u32()
	}
	payloadSize := tr.u32()
	if tr.err != nil {
		return nil, fmt.Errorf("tex mipmap: %w", tr.err)
	}

	// Header sizes are checked before anything is allocated from them.
	if mW == 0 || mH == 0 || mW > MaxTexDimension || mH > MaxTexDimension {
		return nil, fmt.Errorf("mipmap size %dx%d outside 1..%d", mW, mH, MaxTexDimension)
	}
	rawSize := uint64(mW) * uint64(mH) * 4
	maxPayload := rawSize
	if compressed {
		if uint64(decompressedSize) > rawSize {
			return nil, fmt.Errorf("decompressed size %d exceeds %dx%d RGBA", decompressedSize, mW, mH)
		}
		maxPayload = uint64(lz4.CompressBlockBound(int(decompressedSize)))
	}
	if uint64(payloadSize) > maxPayload {
		return nil, fmt.Errorf("mipmap payload %d exceeds %d bytes", payloadSize, maxPayload)
	}

	data := tr.bytes(payloadSize)
	if tr.err != nil {
		return nil, fmt.Errorf("tex mipmap: %w", tr.err)
	}

	if compressed {
		utils.Debug("    Decompressing LZ4: %d -> %d", len(data), decompressedSize)
		out := make([]byte, decompressedSize)
		n, err := lz4.UncompressBlock(data, out)
		if err != nil {
			return nil, fmt.Errorf("tex lz4: %w", err)
		}
		data = out[:n]
	}

	pix, err := decodePixels(format, data, mW, mH)
	if err != nil {
		return nil, err
	}

	img := &image.RGBA{
		Pix:    pix,
		Stride: int(mW * 4),
		Rect:   image.Rect(0, 0, int(mW), int(mH)),
	}
	if imgW == 0 || imgH == 0 || imgW > mW || imgH > mH {
		return img, nil
	}
	return img.SubImage(image.Rect(0, 0, int(imgW), int(imgH))), nil
}

// decodePixels expects w and h within MaxTexDimension, so the byte
// counts below fit in uint32.
func decodePixels(format uint32, data []byte, w, h uint32) ([]byte, error) {
	blocks := ((w + 3) / 4) * ((h + 3) / 4)
	size := uint32(len(data))
	rgba := w * h * 4

	switch {
	case format == texFormatRGBA8888 && size == rgba:
		utils.Debug("    Type: RGBA")
		return data, nil
	case format == texFormatDXT5 || format == texFormatDXT3 || size == blocks*16 && format != texFormatDXT1:
		utils.Debug("    Type: DXT5")
		return dxt.DecodeDXT5(data, uint(w), uint(h))
	case format == texFormatDXT1 || size == blocks*8:
		utils.Debug("    Type: DXT1")
		return dxt.DecodeDXT1(data, uint(w), uint(h))
	case format == texFormatR8 && size == w*h:
		utils.Debug("    Type: R8")
		pix := make([]byte, rgba)
		for i, v := range data {
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = v, v, v, 255
		}
		return pix, nil
	case format == texFormatRG88 && size == w*h*2:
		utils.Debug("    Type: RG88")
		pix := make([]byte, rgba)
		for i := 0; i < int(w*h); i++ {
			l, a := data[i*2], data[i*2+1]
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = l, l, l, a
		}
		return pix, nil
	}
	return nil, fmt.Errorf("unsupported format %d with size %d", format, size)
}
