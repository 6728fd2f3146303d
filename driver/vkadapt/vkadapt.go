// Package vkadapt adapts a real Vulkan queue, fences and command
// buffers to the driver ports that package submitq depends on. It is
// grounded on the retrieval pack's github.com/vulkan-go/vulkan usage
// (celer-vkg's Queue/CommandBuffer wrappers, NOT-REAL-GAMES-vulkango's
// fence waits) rather than the teacher's cgo-based backend, since the
// pack's vulkan-go bindings are the ecosystem's idiomatic Go surface
// for the same Vulkan calls.
package vkadapt

import (
	"sync"

	vk "github.com/vulkan-go/vulkan"

	"github.com/vklayer/submitq/driver"
)

// Device wraps a single vk.Device/vk.Queue pair and a pool of CmdList
// values recycled between frames.
type Device struct {
	VKDevice vk.Device
	VKQueue  vk.Queue

	cfg    driver.Config
	reflex driver.Reflex
	crash  driver.CrashReporter

	mu   sync.Mutex
	pool []*CmdList
}

// NewDevice wraps dev/queue for use by submitq.New. The returned
// Device reports no crash reporter and a no-op Reflex until SetCrashReporter
// and SetReflex are called.
func NewDevice(dev vk.Device, queue vk.Queue, cfg driver.Config) *Device {
	return &Device{
		VKDevice: dev,
		VKQueue:  queue,
		cfg:      cfg,
		reflex:   driver.NopReflex{},
	}
}

// SetReflex wires a latency-marker sink.
func (d *Device) SetReflex(r driver.Reflex) { d.reflex = r }

// SetCrashReporter wires a crash-dump collaborator.
func (d *Device) SetCrashReporter(c driver.CrashReporter) { d.crash = c }

func (d *Device) Config() driver.Config               { return d.cfg }
func (d *Device) Reflex() driver.Reflex               { return d.reflex }
func (d *Device) CrashReporter() driver.CrashReporter { return d.crash }

// WaitForIdle fully drains the device queue.
func (d *Device) WaitForIdle() {
	vk.QueueWaitIdle(d.VKQueue)
}

// RecycleCmdList returns a command list to the pool for reuse by
// NewCmdList. cl must have been created by this Device.
func (d *Device) RecycleCmdList(cl driver.CmdList) {
	c, ok := cl.(*CmdList)
	if !ok {
		return
	}
	d.mu.Lock()
	d.pool = append(d.pool, c)
	d.mu.Unlock()
}

// NewCmdList allocates a command buffer and its completion fence from
// pool, or reuses one previously returned by RecycleCmdList.
func (d *Device) NewCmdList(pool vk.CommandPool) (*CmdList, error) {
	d.mu.Lock()
	if n := len(d.pool); n > 0 {
		c := d.pool[n-1]
		d.pool = d.pool[:n-1]
		d.mu.Unlock()
		return c, nil
	}
	d.mu.Unlock()

	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	}
	cbs := make([]vk.CommandBuffer, 1)
	if err := vk.Error(vk.AllocateCommandBuffers(d.VKDevice, &allocInfo, cbs)); err != nil {
		return nil, err
	}

	fenceInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	var fence vk.Fence
	if err := vk.Error(vk.CreateFence(d.VKDevice, &fenceInfo, nil, &fence)); err != nil {
		return nil, err
	}

	return &CmdList{device: d, cb: cbs[0], fence: fence}, nil
}

// CmdList adapts a vk.CommandBuffer and its completion fence to
// driver.CmdList.
type CmdList struct {
	device *Device
	cb     vk.CommandBuffer
	fence  vk.Fence

	mu        sync.Mutex
	callbacks []func()
}

// OnSignal registers a completion callback, run by NotifySignals once
// the finisher has synchronized on the fence.
func (c *CmdList) OnSignal(fn func()) {
	c.mu.Lock()
	c.callbacks = append(c.callbacks, fn)
	c.mu.Unlock()
}

// Submit enqueues cb onto the device queue, waiting on wait and
// signaling wake if either is a non-nil vk.Semaphore. The caller must
// hold the device-queue lock (spec §4.4).
func (c *CmdList) Submit(wait, wake driver.Semaphore) driver.Result {
	if err := vk.Error(vk.ResetFences(c.device.VKDevice, 1, []vk.Fence{c.fence})); err != nil {
		return driver.ErrorUnknown
	}

	info := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{c.cb},
	}
	if s, ok := wait.(vk.Semaphore); ok {
		info.WaitSemaphoreCount = 1
		info.PWaitSemaphores = []vk.Semaphore{s}
		info.PWaitDstStageMask = []vk.PipelineStageFlags{
			vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		}
	}
	if s, ok := wake.(vk.Semaphore); ok {
		info.SignalSemaphoreCount = 1
		info.PSignalSemaphores = []vk.Semaphore{s}
	}

	res := vk.QueueSubmit(c.device.VKQueue, 1, []vk.SubmitInfo{info}, c.fence)
	return driver.Result(res)
}

// Synchronize blocks on the command list's fence.
func (c *CmdList) Synchronize() driver.Result {
	res := vk.WaitForFences(c.device.VKDevice, 1, []vk.Fence{c.fence}, vk.True, ^uint64(0))
	return driver.Result(res)
}

// NotifySignals runs and clears every callback registered with
// OnSignal.
func (c *CmdList) NotifySignals() {
	c.mu.Lock()
	cbs := c.callbacks
	c.callbacks = nil
	c.mu.Unlock()
	for _, fn := range cbs {
		fn()
	}
}

// Reset puts the command buffer back into a recordable state.
func (c *CmdList) Reset() {
	vk.ResetCommandBuffer(c.cb, 0)
}
