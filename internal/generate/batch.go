package generate

// DefaultBatchSize is the number of questions per completion call.
const DefaultBatchSize = 10

// splitBatches partitions topics into ceil(len/batchSize) batches by
// round-robin striping: topic i goes to batch i mod numBatches. Each batch
// gets a near-equal, non-contiguous slice, so no batch monopolizes a single
// sub-topic.
func splitBatches(topics []string, batchSize int) [][]string {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	n := len(topics)
	if n == 0 {
		return nil
	}
	numBatches := (n + batchSize - 1) / batchSize
	batches := make([][]string, numBatches)
	for i, t := range topics {
		b := i % numBatches
		batches[b] = append(batches[b], t)
	}
	return batches
}
