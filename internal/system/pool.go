package system

import (
	"image"
	"sync"
)

// FramePool recycles fixed-size *image.RGBA frames between rasterizer
// workers and the encoder writer to keep GC pressure flat during export.
type FramePool struct {
	rect image.Rectangle
	pool sync.Pool
}

func NewFramePool(w, h int) *FramePool {
	rect := image.Rect(0, 0, w, h)
	return &FramePool{
		rect: rect,
		pool: sync.Pool{
			New: func() interface{} {
				return image.NewRGBA(rect)
			},
		},
	}
}

func (p *FramePool) Get() *image.RGBA {
	return p.pool.Get().(*image.RGBA)
}

func (p *FramePool) Put(img *image.RGBA) {
	if img == nil || img.Rect != p.rect {
		return
	}
	p.pool.Put(img)
}
