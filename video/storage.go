package video

// FrameStorage is a reusable buffer holding one frame's pixel data in a
// tightly packed layout, together with the frame's dimensions.
//
// Storages are created and recycled by a FrameQueue; the consumer borrows
// one from TryDequeue and must hand it back via Recycle. The underlying
// buffer only ever grows: enqueuing a larger frame into a recycled storage
// reallocates it, enqueuing a smaller frame reslices it.
type FrameStorage struct {
	data   []byte
	width  int
	height int
}

// Data returns the packed pixel bytes of the stored frame.
//
// For planar layouts the planes are laid out consecutively (Y, U, V, then
// A when present), each plane tightly packed with no stride padding.
func (s *FrameStorage) Data() []byte {
	return s.data
}

// Width returns the stored frame's width in pixels.
func (s *FrameStorage) Width() int {
	return s.width
}

// Height returns the stored frame's height in pixels.
func (s *FrameStorage) Height() int {
	return s.height
}

// Capacity returns the size in bytes of the underlying buffer, which may
// exceed the current frame's size after the storage has held a larger frame.
func (s *FrameStorage) Capacity() int {
	return cap(s.data)
}

// resize prepares the storage to hold size bytes, reallocating only when
// the current buffer is too small. Contents are not preserved; the caller
// is about to overwrite them.
func (s *FrameStorage) resize(size int) {
	if cap(s.data) < size {
		s.data = make([]byte, size)
		return
	}
	s.data = s.data[:size]
}

// RawFrame is a decoded frame as delivered by the upstream producer,
// referencing the producer's own (possibly stride-padded) plane memory.
//
// The set of layouts is closed: frames are either planar I420 with an
// optional alpha plane, or packed 32-bit ARGB. A FrameQueue is specialized
// to exactly one layout at construction.
type RawFrame interface {
	// StorageSize returns the number of bytes the frame occupies once
	// copied into a tightly packed FrameStorage buffer.
	StorageSize() int

	// Dimensions returns the frame's width and height in pixels.
	Dimensions() (width, height int)

	// copyTo performs the strided copy from the producer's plane memory
	// into dst, which is tightly packed and exactly StorageSize bytes.
	copyTo(dst []byte)
}

// I420AFrame is a planar YUV frame with 4:2:0 chroma subsampling and an
// optional alpha plane. Plane strides may exceed the tight row width; the
// copy into storage removes the padding.
type I420AFrame struct {
	Width  int
	Height int

	Y []byte
	U []byte
	V []byte
	A []byte // nil when the frame has no alpha plane

	YStride int
	UStride int
	VStride int
	AStride int
}

// chromaDims returns the width and height of the U and V planes.
func (f I420AFrame) chromaDims() (int, int) {
	return (f.Width + 1) / 2, (f.Height + 1) / 2
}

// StorageSize returns the packed size: full-resolution Y (and A when
// present) plus two half-resolution chroma planes.
func (f I420AFrame) StorageSize() int {
	cw, ch := f.chromaDims()
	size := f.Width*f.Height + 2*cw*ch
	if f.A != nil {
		size += f.Width * f.Height
	}
	return size
}

// Dimensions returns the frame's width and height in pixels.
func (f I420AFrame) Dimensions() (int, int) {
	return f.Width, f.Height
}

func (f I420AFrame) copyTo(dst []byte) {
	cw, ch := f.chromaDims()
	offset := copyPlane(dst, 0, f.Y, f.YStride, f.Width, f.Height)
	offset = copyPlane(dst, offset, f.U, f.UStride, cw, ch)
	offset = copyPlane(dst, offset, f.V, f.VStride, cw, ch)
	if f.A != nil {
		copyPlane(dst, offset, f.A, f.AStride, f.Width, f.Height)
	}
}

// ARGBFrame is a packed 32-bit frame (4 bytes per pixel). The source
// stride may exceed Width*4; the copy into storage removes the padding.
type ARGBFrame struct {
	Width  int
	Height int
	Data   []byte
	Stride int
}

// StorageSize returns the packed size of the frame (Width*4 bytes per row).
func (f ARGBFrame) StorageSize() int {
	return f.Width * 4 * f.Height
}

// Dimensions returns the frame's width and height in pixels.
func (f ARGBFrame) Dimensions() (int, int) {
	return f.Width, f.Height
}

func (f ARGBFrame) copyTo(dst []byte) {
	copyPlane(dst, 0, f.Data, f.Stride, f.Width*4, f.Height)
}

// copyPlane copies rows rows of rowBytes bytes each from a stride-padded
// source plane into dst starting at offset, tightly packed. It returns the
// offset just past the copied plane.
func copyPlane(dst []byte, offset int, src []byte, stride, rowBytes, rows int) int {
	if stride == rowBytes {
		// No padding, single copy.
		copy(dst[offset:offset+rowBytes*rows], src)
		return offset + rowBytes*rows
	}
	for r := 0; r < rows; r++ {
		copy(dst[offset:offset+rowBytes], src[r*stride:])
		offset += rowBytes
	}
	return offset
}
