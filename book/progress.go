// Copyright 2022 Hal Canary
// Use of this program is governed by the file LICENSE.
package book

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"
)

// Progress receives one Add per finished chapter, successful or not. It is
// observational only.
type Progress interface {
	Start(total int)
	Add(n int)
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int) {}
func (nopProgress) Add(int)   {}
func (nopProgress) Finish()   {}

// Terminal progress bar. Add may be called from many goroutines.
type BarProgress struct {
	w           io.Writer
	description string
	bar         *progressbar.ProgressBar
}

func NewBarProgress(w io.Writer, description string) *BarProgress {
	return &BarProgress{w: w, description: description}
}

func (p *BarProgress) Start(total int) {
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(p.description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(p.w)
		}),
	)
}

func (p *BarProgress) Add(n int) {
	if p.bar != nil {
		p.bar.Add(n)
	}
}

func (p *BarProgress) Finish() {
	if p.bar != nil {
		p.bar.Finish()
	}
}
