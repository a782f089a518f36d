package main

import (
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// chime plays a short sine tone when boids come loose. A chime whose speaker
// failed to open stays silent.
type chime struct {
	ready bool
	last  time.Time
}

func newChime() (*chime, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return &chime{}, err
	}
	return &chime{ready: true}, nil
}

// play sounds a tone that rises with the number of released boids, at most
// once every 60ms.
func (c *chime) play(released int) {
	if !c.ready || released == 0 || time.Since(c.last) < 60*time.Millisecond {
		return
	}
	freq := 660 + 40*min(released, 10)
	sine, err := generators.SineTone(sampleRate, float64(freq))
	if err != nil {
		return
	}
	speaker.Play(beep.Take(sampleRate.N(50*time.Millisecond), sine))
	c.last = time.Now()
}

func (c *chime) close() {
	if c.ready {
		speaker.Close()
	}
}
