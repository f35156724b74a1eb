// Copyright (c) 2022-2024 The Press developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"sync"
)

type eventT int

const (
	// Event types
	eventTypeInvalid eventT = iota

	// User events
	eventSignup
	eventPasswordReset
	eventPasswordChanged
)

// eventManager manages event listeners for different event types.
type eventManager struct {
	sync.Mutex
	listeners map[eventT][]chan interface{}
}

// register adds a listener for the given event type.
func (e *eventManager) register(event eventT, listener chan interface{}) {
	e.Lock()
	defer e.Unlock()

	l, ok := e.listeners[event]
	if !ok {
		l = make([]chan interface{}, 0)
	}

	l = append(l, listener)
	e.listeners[event] = l
}

// fire fires off an event by passing it to all channels that have been
// registered to listen for the event.
func (e *eventManager) fire(event eventT, data interface{}) {
	e.Lock()
	defer e.Unlock()

	listeners, ok := e.listeners[event]
	if !ok {
		log.Errorf("fire: unregistered event %v", event)
		return
	}

	for _, ch := range listeners {
		ch <- data
	}
}

// newEventManager returns a new eventManager context.
func newEventManager() *eventManager {
	return &eventManager{
		listeners: make(map[eventT][]chan interface{}),
	}
}

func (p *presswww) setupEventListeners() {
	// Setup process for each event:
	// 1. Create a channel for the event
	// 2. Register the channel with the event manager
	// 3. Launch an event handler to listen for new events

	// Setup signup event
	ch := make(chan interface{})
	p.eventManager.register(eventSignup, ch)
	go p.handleEventSignup(ch)

	// Setup password reset event
	ch = make(chan interface{})
	p.eventManager.register(eventPasswordReset, ch)
	go p.handleEventPasswordReset(ch)

	// Setup password changed event
	ch = make(chan interface{})
	p.eventManager.register(eventPasswordChanged, ch)
	go p.handleEventPasswordChanged(ch)
}

type dataSignup struct {
	email    string // User email
	username string // User username
	token    string // Email verification token
}

func (p *presswww) handleEventSignup(ch chan interface{}) {
	for msg := range ch {
		d, ok := msg.(dataSignup)
		if !ok {
			log.Errorf("handleEventSignup invalid msg: %v", msg)
			continue
		}

		err := p.emailUserWelcome(d.email, d.username)
		if err != nil {
			log.Errorf("emailUserWelcome %v: %v", d.email, err)
		}

		err = p.emailUserEmailVerify(d.email, d.username, d.token)
		if err != nil {
			log.Errorf("emailUserEmailVerify %v: %v", d.email, err)
		}

		log.Debugf("Sent signup emails %v", d.username)
	}
}

type dataPasswordReset struct {
	email    string // User email
	username string // User username
	token    string // Password reset token
}

func (p *presswww) handleEventPasswordReset(ch chan interface{}) {
	for msg := range ch {
		d, ok := msg.(dataPasswordReset)
		if !ok {
			log.Errorf("handleEventPasswordReset invalid msg: %v", msg)
			continue
		}

		err := p.emailUserPasswordReset(d.email, d.username, d.token)
		if err != nil {
			log.Errorf("emailUserPasswordReset %v: %v", d.email, err)
		}

		log.Debugf("Sent password reset email %v", d.username)
	}
}

type dataPasswordChanged struct {
	email    string // User email
	username string // User username
}

func (p *presswww) handleEventPasswordChanged(ch chan interface{}) {
	for msg := range ch {
		d, ok := msg.(dataPasswordChanged)
		if !ok {
			log.Errorf("handleEventPasswordChanged invalid msg: %v", msg)
			continue
		}

		err := p.emailUserPasswordChanged(d.email, d.username)
		if err != nil {
			log.Errorf("emailUserPasswordChanged %v: %v", d.email, err)
		}

		log.Debugf("Sent password changed email %v", d.username)
	}
}
