package io

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-gl/mathgl/mgl64"
)

/*
The binary format used for frames is as follows:
    |-- 1 --||-- 2 --||-- 3 --||-- ... 4 ... --||-- ... 5 ... --||-- ... 6 ... --|

    1 - (int32) Flag indicating the endianness of the file. 0 indicates a little
        endian byte ordering and -1 indicates a big endian byte order.
    2 - (int32) Size of a FrameHeader struct. Should be checked for consistency.
    3 - (FrameHeader) Header containing meta-information about the frame.
    4 - ([]int64) Number of particles in each body.
    5 - ([][3]float64) Contiguous block of x, y, z coordinates.
    6 - ([][3]float64) Contiguous block of v_x, v_y, v_z velocities.
*/
type FrameHeader struct {
	Step      int64
	Time      float64
	Bodies    int64
	Particles int64
}

// Frame is a snapshot of every body in a scene, concatenated in body order.
type Frame struct {
	Header     FrameHeader
	Counts     []int64
	Positions  []mgl64.Vec3
	Velocities []mgl64.Vec3
}

const DefaultEndiannessFlag int32 = 0

// Frames read from streams of unknown length are limited to these sizes.
const (
	MaxFrameBodies    int64 = 1 << 24
	MaxFrameParticles int64 = 1 << 28
)

// endianness converts an endianness flag to a byte order.
func endianness(flag int32) (binary.ByteOrder, error) {
	switch flag {
	case 0:
		return binary.LittleEndian, nil
	case -1:
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("Unrecognized endianness flag, %d.", flag)
}

// FrameName returns the name of the file holding the given step.
func FrameName(dir string, step int) string {
	return path.Join(dir, fmt.Sprintf("frame_%06d.pbd", step))
}

// Check returns an error if the frame's arrays disagree with its header.
func (f *Frame) Check() error {
	hd := &f.Header
	if int64(len(f.Counts)) != hd.Bodies {
		return fmt.Errorf("Header has %d bodies, but %d body counts are given.",
			hd.Bodies, len(f.Counts))
	} else if int64(len(f.Positions)) != hd.Particles {
		return fmt.Errorf("Header has %d particles, but %d positions are given.",
			hd.Particles, len(f.Positions))
	} else if int64(len(f.Velocities)) != hd.Particles {
		return fmt.Errorf("Header has %d particles, but %d velocities are given.",
			hd.Particles, len(f.Velocities))
	}

	sum := int64(0)
	for _, n := range f.Counts { sum += n }
	if sum != hd.Particles {
		return fmt.Errorf("Body counts sum to %d, but header has %d particles.",
			sum, hd.Particles)
	}
	return nil
}

// WriteFrame writes a frame to wr.
func WriteFrame(wr io.Writer, f *Frame) error {
	if err := f.Check(); err != nil { return err }

	order, _ := endianness(DefaultEndiannessFlag)
	size := int32(binary.Size(&f.Header))
	for _, x := range []interface{}{
		DefaultEndiannessFlag, size, &f.Header, f.Counts, f.Positions, f.Velocities,
	} {
		if err := binary.Write(wr, order, x); err != nil { return err }
	}
	return nil
}

// ReadFrame reads a frame written by WriteFrame.
func ReadFrame(rd io.Reader) (*Frame, error) {
	// Flags are symmetric, so the order doesn't matter for this read.
	var flag, size int32
	if err := binary.Read(rd, binary.LittleEndian, &flag); err != nil {
		return nil, err
	}
	order, err := endianness(flag)
	if err != nil { return nil, err }

	if err := binary.Read(rd, order, &size); err != nil { return nil, err }
	f := &Frame{}
	if int(size) != binary.Size(&f.Header) {
		return nil, fmt.Errorf("Expected FrameHeader size of %d, found %d.",
			binary.Size(&f.Header), size)
	}
	if err := binary.Read(rd, order, &f.Header); err != nil { return nil, err }

	if f.Header.Bodies < 0 || f.Header.Particles < 0 {
		return nil, fmt.Errorf("Frame header has negative sizes: %d bodies, "+
			"%d particles.", f.Header.Bodies, f.Header.Particles)
	}
	if f.Header.Bodies > MaxFrameBodies || f.Header.Particles > MaxFrameParticles {
		return nil, fmt.Errorf("Frame header sizes of %d bodies and %d "+
			"particles exceed the limits of %d and %d.", f.Header.Bodies,
			f.Header.Particles, MaxFrameBodies, MaxFrameParticles)
	}
	need := 8*f.Header.Bodies + 2*int64(binary.Size(mgl64.Vec3{}))*f.Header.Particles
	if left, ok := remaining(rd); ok && left < need {
		return nil, fmt.Errorf("Frame header requires %d more bytes, but only "+
			"%d remain.", need, left)
	}

	f.Counts = make([]int64, f.Header.Bodies)
	f.Positions = make([]mgl64.Vec3, f.Header.Particles)
	f.Velocities = make([]mgl64.Vec3, f.Header.Particles)
	for _, x := range []interface{}{f.Counts, f.Positions, f.Velocities} {
		if err := binary.Read(rd, order, x); err != nil { return nil, err }
	}

	return f, f.Check()
}

// remaining returns the number of unread bytes in rd if rd can report it.
func remaining(rd io.Reader) (int64, bool) {
	switch r := rd.(type) {
	case interface{ Len() int }:
		return int64(r.Len()), true
	case io.Seeker:
		cur, err := r.Seek(0, io.SeekCurrent)
		if err != nil { return 0, false }
		end, err := r.Seek(0, io.SeekEnd)
		if err != nil { return 0, false }
		if _, err := r.Seek(cur, io.SeekStart); err != nil { return 0, false }
		return end - cur, true
	}
	return 0, false
}

// WriteFrameFile writes a frame to a new file.
func WriteFrameFile(file string, f *Frame) error {
	out, err := os.Create(file)
	if err != nil { return err }
	if err = WriteFrame(out, f); err != nil {
		out.Close()
		return fmt.Errorf("Could not write frame %s: %w", file, err)
	}
	return out.Close()
}

// ReadFrameFile reads the frame stored in a file.
func ReadFrameFile(file string) (*Frame, error) {
	in, err := os.Open(file)
	if err != nil { return nil, err }
	defer in.Close()

	f, err := ReadFrame(in)
	if err != nil {
		return nil, fmt.Errorf("Could not read frame %s: %w", file, err)
	}
	return f, nil
}
