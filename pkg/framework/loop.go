package framework

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang/glog"
)

// Loop is the clock: each iteration is one cycle evaluating all
// controllers by priority level.
type Loop struct {
	// Interval is the clock period when free running.
	Interval time.Duration
	// Manual disables the free running clock, cycles only run when
	// triggered or stepped.
	Manual bool

	controllers [PriorityLevels]controllerList

	runners []Runnable

	messages messageList
	lock     sync.Mutex

	cycle     uint64
	cycleLock sync.Mutex

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

// DefaultInterval is the default clock period.
const DefaultInterval = 100 * time.Millisecond

type loopCtl struct {
	*Loop
}

type cycleCtx struct {
	loopCtl
	ctx           context.Context
	time          time.Time
	cycle         uint64
	priorityLevel int
	messages      messageList
}

type messageList struct {
	head *messageItem
	tail *messageItem
}

type messageItem struct {
	msg  Message
	next *messageItem
}

func (l *messageList) append(item *messageItem) {
	if l.head == nil {
		l.head = item
	} else {
		l.tail.next = item
	}
	l.tail = item
}

func (l *messageList) splice(src *messageList) {
	l.head, l.tail, src.head, src.tail = src.head, src.tail, nil, nil
}

func (l *messageList) concat(lst *messageList) {
	if l.head == nil {
		l.head = lst.head
	} else {
		l.tail.next = lst.head
	}
	if lst.head != nil {
		l.tail = lst.tail
	}
}

type controllerList struct {
	preHooks    []Controller
	controllers []Controller
	postHooks   []Controller
	lock        sync.Mutex
}

var (
	loopCtxKey = &Loop{}
)

// LoopCtlFrom gets LoopControl from context.
func LoopCtlFrom(ctx context.Context) LoopControl {
	return ctx.Value(loopCtxKey).(LoopControl)
}

// CtlCtxFrom gets ControlContext from context.
func CtlCtxFrom(ctx context.Context) ControlContext {
	return ctx.Value(loopCtxKey).(ControlContext)
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	lst := &l.controllers[priorityLevel]
	lst.controllers = append(lst.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Cycle returns the number of cycles evaluated so far.
func (l *Loop) Cycle() uint64 {
	l.cycleLock.Lock()
	defer l.cycleLock.Unlock()
	return l.cycle
}

// Run implements Runnable. A Runnable added to the loop failing stops the
// loop and its error is returned.
func (l *Loop) Run(ctx context.Context) error {
	l.init()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runner := NewRunnerWith(context.WithValue(runCtx, loopCtxKey, &loopCtl{l}))
	runner.OnError = func(string, error) { cancel() }
	runner.Go(l.runners...)

	var clock <-chan time.Time
	if !l.Manual {
		interval := l.Interval
		if interval == 0 {
			interval = DefaultInterval
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		clock = ticker.C
	}
	for {
		select {
		case <-runCtx.Done():
			cancel()
			if err := runner.Wait(); err != nil {
				return err
			}
			return ctx.Err()
		case <-clock:
			l.Step(runCtx)
		case <-l.wakeUpCh:
			l.Step(runCtx)
		}
	}
}

// RunOrFail is intended to be used in main to simply run the loop.
func (l *Loop) RunOrFail() {
	if err := NewRunner().HandleSignals().Go(l).Wait(); err != nil {
		log.Fatalln(err)
	}
}

// Step evaluates exactly one cycle synchronously.
// It must not be called concurrently with Run.
func (l *Loop) Step(ctx context.Context) {
	l.init()
	l.cycleLock.Lock()
	l.cycle++
	cycle := l.cycle
	l.cycleLock.Unlock()

	cc := &cycleCtx{loopCtl: loopCtl{l}, time: time.Now(), cycle: cycle}
	l.lock.Lock()
	cc.messages.splice(&l.messages)
	l.lock.Unlock()
	cc.ctx = context.WithValue(ctx, loopCtxKey, cc)
	for i := 0; i < PriorityLevels; i++ {
		cc.priorityLevel = i
		l.controllers[i].run(cc)
	}
	if cc.messages.head != nil {
		// leftovers are dropped, nobody is interested in them.
		glog.V(4).Infof("cycle %d: unprocessed messages dropped", cycle)
	}
}

// PreRunAt implements LoopControl.
func (l *Loop) PreRunAt(priorityLevel int, hooks ...Controller) {
	lst := &l.controllers[priorityLevel]
	lst.lock.Lock()
	lst.preHooks = append(lst.preHooks, hooks...)
	lst.lock.Unlock()
}

// PostRunAt implements LoopControl.
func (l *Loop) PostRunAt(priorityLevel int, hooks ...Controller) {
	lst := &l.controllers[priorityLevel]
	lst.lock.Lock()
	lst.postHooks = append(lst.postHooks, hooks...)
	lst.lock.Unlock()
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.messages.append(&messageItem{msg: msg})
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	l.init()
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

func (l *Loop) init() {
	l.lock.Lock()
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	l.lock.Unlock()
}

func (c *cycleCtx) Context() context.Context {
	return c.ctx
}

func (c *cycleCtx) Time() time.Time {
	return c.time
}

func (c *cycleCtx) Cycle() uint64 {
	return c.cycle
}

func (c *cycleCtx) PriorityLevel() int {
	return c.priorityLevel
}

func (c *cycleCtx) Messages() MessageStore {
	return c
}

func (c *cycleCtx) PostRun(hooks ...Controller) {
	c.PostRunAt(c.priorityLevel, hooks...)
}

type messageContext struct {
	cc    *cycleCtx
	item  *messageItem
	taken bool
	stop  bool
}

func (m *messageContext) CurrentMessage() Message     { return m.item.msg }
func (m *messageContext) MessageTaken()               { m.taken = true }
func (m *messageContext) StopProcessing()             { m.stop = true }
func (m *messageContext) AddMessages(msgs ...Message) { m.cc.AddMessages(msgs...) }

func (c *cycleCtx) ProcessMessages(proc MessageProcessor) {
	var msgs, remains messageList
	msgs.splice(&c.messages)
	for msgs.head != nil {
		mctx := &messageContext{cc: c, item: msgs.head}
		msgs.head = msgs.head.next
		mctx.item.next = nil
		proc.ProcessMessage(mctx)
		if !mctx.taken {
			remains.append(mctx.item)
		}
		if mctx.stop {
			remains.concat(&msgs)
			break
		}
	}
	remains.concat(&c.messages)
	c.messages = remains
}

func (c *cycleCtx) AddMessages(msgs ...Message) {
	for _, msg := range msgs {
		c.messages.append(&messageItem{msg: msg})
	}
}

func (c *controllerList) run(cc *cycleCtx) {
	c.lock.Lock()
	ctls := c.preHooks
	c.preHooks = nil
	c.lock.Unlock()
	runControllers(cc, ctls)
	runControllers(cc, c.controllers)
	c.lock.Lock()
	ctls, c.postHooks = c.postHooks, nil
	c.lock.Unlock()
	runControllers(cc, ctls)
}

func runControllers(cc *cycleCtx, ctls []Controller) {
	for _, ctl := range ctls {
		if err := ctl.Control(cc); err != nil {
			glog.Errorf("cycle %d: controller error: %v", cc.cycle, err)
		}
	}
}
