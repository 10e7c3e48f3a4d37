package scheduler

import (
	"container/heap"
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/subtitleops/captionlint/pkg/models"
)

// JobScheduler buffers validation jobs and dispatches them to the broker in
// priority order, keeping the broker backlog below a configured cap.
type JobScheduler struct {
	queue      *PriorityQueue
	mu         sync.RWMutex
	maxBacklog int
	repo       Repository
	publisher  JobPublisher
	ctx        context.Context
	cancel     context.CancelFunc
}

// Repository defines the interface for job persistence
type Repository interface {
	GetPendingJobs(ctx context.Context, limit int) ([]*models.ValidationJob, error)
	MarkJobDispatched(ctx context.Context, jobID string) error
}

// JobPublisher defines the interface for publishing jobs to the broker
type JobPublisher interface {
	PublishJob(ctx context.Context, job *models.ValidationJob) error
	GetQueueDepth() (int, error)
}

// NewScheduler creates a new job scheduler
func NewScheduler(repo Repository, publisher JobPublisher, maxBacklog int) *JobScheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &JobScheduler{
		queue:      &PriorityQueue{},
		maxBacklog: maxBacklog,
		repo:       repo,
		publisher:  publisher,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Start begins the scheduler
func (s *JobScheduler) Start() error {
	heap.Init(s.queue)

	// Recover jobs that never reached the broker
	if err := s.loadPendingJobs(); err != nil {
		return fmt.Errorf("failed to load pending jobs: %w", err)
	}

	go s.scheduleLoop()

	log.Println("Job scheduler started")
	return nil
}

// Stop stops the scheduler
func (s *JobScheduler) Stop() {
	s.cancel()
	log.Println("Job scheduler stopped")
}

// ScheduleJob adds a job to the dispatch buffer
func (s *JobScheduler) ScheduleJob(job *models.ValidationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := &QueueItem{
		Job:       job,
		Priority:  job.Priority,
		Timestamp: time.Now(),
	}

	heap.Push(s.queue, item)
	return nil
}

// loadPendingJobs loads undispatched jobs from the database
func (s *JobScheduler) loadPendingJobs() error {
	jobs, err := s.repo.GetPendingJobs(s.ctx, 1000)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := s.ScheduleJob(job); err != nil {
			log.Printf("Failed to schedule job %s: %v", job.ID, err)
		}
	}

	log.Printf("Loaded %d pending jobs", len(jobs))
	return nil
}

// scheduleLoop is the main scheduling loop
func (s *JobScheduler) scheduleLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.processQueue()
		}
	}
}

// processQueue dispatches jobs from the priority queue to the broker
func (s *JobScheduler) processQueue() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.queue.Len() > 0 {
		depth, err := s.publisher.GetQueueDepth()
		if err != nil {
			log.Printf("Failed to inspect broker queue: %v", err)
			return
		}
		if depth >= s.maxBacklog {
			return
		}

		item := heap.Pop(s.queue).(*QueueItem)

		if err := s.publisher.PublishJob(s.ctx, item.Job); err != nil {
			log.Printf("Failed to publish job %s: %v", item.Job.ID, err)
			// Re-queue the job
			heap.Push(s.queue, item)
			return
		}

		if err := s.repo.MarkJobDispatched(s.ctx, item.Job.ID); err != nil {
			log.Printf("Failed to mark job dispatched %s: %v", item.Job.ID, err)
		}

		log.Printf("Dispatched job %s (priority: %d, backlog: %d/%d)",
			item.Job.ID, item.Priority, depth+1, s.maxBacklog)
	}
}

// GetQueueDepth returns the number of buffered jobs
func (s *JobScheduler) GetQueueDepth() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queue.Len()
}

// PriorityQueue implements a priority queue for validation jobs
type PriorityQueue []*QueueItem

// QueueItem represents a job in the priority queue
type QueueItem struct {
	Job       *models.ValidationJob
	Priority  int
	Timestamp time.Time
	Index     int
}

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	// Higher priority first
	if pq[i].Priority != pq[j].Priority {
		return pq[i].Priority > pq[j].Priority
	}
	// If same priority, FIFO (earlier timestamp first)
	return pq[i].Timestamp.Before(pq[j].Timestamp)
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x interface{}) {
	n := len(*pq)
	item := x.(*QueueItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1
	*pq = old[0 : n-1]
	return item
}
