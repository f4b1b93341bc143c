package bbc

import (
	"github.com/newhook/beebgo/diag"
	"github.com/newhook/beebgo/via"
)

const adcNumChannels = 4

// ADC models the Master/Compact's 4-channel analogue-to-digital converter
// (joystick/paddle input). Conversions are instant rather than taking the
// real chip's ~8 line-time conversion window — the same simplification the
// teacher's ancestor makes, carried over as spec.md §9's Open Question.
type ADC struct {
	systemVIA      *via.VIA
	currentChannel uint8
	channelValue   [adcNumChannels]uint16
}

// NewADC returns an ADC with every channel centered (0x8000, the
// "joystick at rest" value), wired to pulse the system VIA's CB1 line on
// every channel-select write.
func NewADC(systemVIA *via.VIA) *ADC {
	a := &ADC{systemVIA: systemVIA}
	for i := range a.channelValue {
		a.channelValue[i] = 0x8000
	}
	return a
}

// SetChannelValue sets the raw 16-bit reading for one channel (only the top
// 12 bits are ever visible through Read).
func (a *ADC) SetChannelValue(channel int, value uint16) {
	a.channelValue[channel] = value
}

// Read implements the ADC's 4-register window (status, high, low, and an
// unimplemented 4th register AUG doesn't document).
func (a *ADC) Read(addr uint8) uint8 {
	val := a.channelValue[a.currentChannel]

	switch addr {
	case 0: // status: conversion always complete, never busy (see type doc)
		ret := uint8(0x40)
		ret |= a.currentChannel
		if val&0x8000 != 0 {
			ret |= 0x20
		}
		if val&0x4000 != 0 {
			ret |= 0x10
		}
		return ret
	case 1: // ADC high
		return uint8(val >> 8)
	case 2: // ADC low; AUG: bits 3-0 always read as low
		return uint8(val&0xFF) & 0xF0
	case 3:
		diag.Unimplemented("adc: read of register index 3")
		return 0
	default:
		return 0
	}
}

// Write implements the ADC's single writable register: channel select.
// Because conversions complete instantly, the conversion-done interrupt
// (system VIA CB1) pulses immediately rather than after a real conversion
// delay.
func (a *ADC) Write(addr uint8, val uint8) {
	if addr != 0 {
		return
	}
	a.currentChannel = val & 3
	a.systemVIA.SetCB1(true)
	a.systemVIA.SetCB1(false)
}

// ADCSnapshot captures the channel selector and all four channel readings.
type ADCSnapshot struct {
	CurrentChannel uint8
	ChannelValue   [adcNumChannels]uint16
}

func (a *ADC) SaveSnapshot() ADCSnapshot {
	return ADCSnapshot{CurrentChannel: a.currentChannel, ChannelValue: a.channelValue}
}

func (a *ADC) RestoreSnapshot(s ADCSnapshot) {
	a.currentChannel = s.CurrentChannel
	a.channelValue = s.ChannelValue
}
