package omegabot

import (
	"context"
	"fmt"
	"hash"
	"hash/crc32"
	"math"
	"sync"

	"github.com/slack-go/slack"
)

// partitionRouter dispatches events to a fixed set of worker queues. The queue is picked from
// the hash of the id of the message an event is about so that all events about one message
// (its creation, its deletion and reactions to it) are processed in order
type partitionRouter struct {
	log SLogger

	queues []chan slack.RTMEvent

	// hasher is only used by the dispatching goroutine
	hasher   hash.Hash32
	hashMask int

	workers sync.WaitGroup

	*instrumenter
}

// eventProcessor processes one event taken from a partition queue
type eventProcessor func(e slack.RTMEvent)

func newPartitionRouter(partitionCount int, queueBufferSize int, log SLogger, instrumenter *instrumenter) (pr *partitionRouter, err error) {
	if !isPowerOfTwo(partitionCount) {
		return nil, fmt.Errorf("A partition router can only work with a partitionCount that is a power of two but was [%d]", partitionCount)
	}

	pr = &partitionRouter{log: log, instrumenter: instrumenter, hasher: crc32.NewIEEE(), hashMask: hashMask(partitionCount)}
	pr.queues = make([]chan slack.RTMEvent, partitionCount)
	for i := range pr.queues {
		pr.queues[i] = make(chan slack.RTMEvent, queueBufferSize)
	}

	return pr, nil
}

// start launches one worker per partition
func (pr *partitionRouter) start(process eventProcessor) {
	for i, q := range pr.queues {
		pr.workers.Add(1)

		go func(partition int, queue <-chan slack.RTMEvent) {
			defer pr.workers.Done()

			for e := range queue {
				process(e)
			}

			pr.log.Debugf("Worker for partition [%d] terminated\n", partition)
		}(i, q)
	}
}

// stop closes all queues and waits for workers to drain them
func (pr *partitionRouter) stop() {
	for _, q := range pr.queues {
		close(q)
	}

	pr.workers.Wait()
}

// route dispatches an event to the partition of the message it is about
func (pr *partitionRouter) route(e slack.RTMEvent, msgID SlackMessageID) {
	partition := pr.partitionForMsgID(msgID)

	pr.log.Debugf("Dispatching event [%s] about message [%s] to partition [%d]\n", e.Type, msgID, partition)
	d := measure(func() {
		pr.queues[partition] <- e
	})

	pr.coreMetrics.msgDispatchLatencyMillis.Record(context.Background(), d.Milliseconds(), pr.nameAttrs(""))
}

// partitionForMsgID returns the partition index for a given message ID
func (pr *partitionRouter) partitionForMsgID(msgID SlackMessageID) (partition int) {
	pr.hasher.Reset()
	pr.hasher.Write([]byte(msgID.channelID))
	pr.hasher.Write([]byte(msgID.timestamp))
	res := pr.hasher.Sum32()

	// Keep only the rightmost bits so we have a max equal to the partition count
	return int(res) & pr.hashMask
}

// isPowerOfTwo returns true if val is a power of two or false if not
func isPowerOfTwo(val int) bool {
	return (val != 0) && (val&(val-1)) == 0
}

// hashMask builds a mask for a partitionCount (which should be a power of two) to get a hash value
// that is in the range of the number of partitions we have
func hashMask(partitionCount int) int {
	maskSize := int(math.Log2(float64(partitionCount)))
	mask := 0
	for i := 0; i < maskSize; i++ {
		mask = mask<<1 | 1
	}

	return mask
}
