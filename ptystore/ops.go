package ptystore

import (
	"context"
	"encoding/base64"
	"io/fs"
	"os"

	"github.com/pkg/errors"

	"github.com/termlog/cirstore/cirfile"
	"github.com/termlog/cirstore/metrics"
	"github.com/termlog/cirstore/utils/log"
)

func countContention(op string, err error) {
	if errors.Is(err, cirfile.ErrWouldBlock) || errors.Is(err, context.DeadlineExceeded) {
		metrics.LockContentionTotal.WithLabelValues(op).Inc()
	}
}

// CreateCmdPtyFile creates the output file for a line. A maxSize <= 0 uses
// the configured default.
func (s *Store) CreateCmdPtyFile(ctx context.Context, screenId string, lineId string, maxSize int64) error {
	fileName, err := s.PtyOutFile(screenId, lineId)
	if err != nil {
		return err
	}
	if maxSize <= 0 {
		maxSize = s.cfg.DefaultMaxSize
	}
	f, err := cirfile.Create(fileName, maxSize, s.opts...)
	if err != nil {
		return err
	}
	return f.Close()
}

func (s *Store) StatCmdPtyFile(ctx context.Context, screenId string, lineId string) (*cirfile.Stat, error) {
	fileName, err := s.PtyOutFile(screenId, lineId)
	if err != nil {
		return nil, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	st, err := cirfile.StatFile(ctx, fileName, s.opts...)
	countContention("stat", err)
	return st, err
}

// AppendToCmdPtyBlob writes data at the logical position pos of the line's
// output and returns the update that was published for it.
func (s *Store) AppendToCmdPtyBlob(ctx context.Context, screenId string, lineId string, data []byte, pos int64) (*PtyDataUpdate, error) {
	if screenId == "" {
		return nil, errors.New("cannot append to PtyBlob, screenid is not set")
	}
	if pos < 0 {
		return nil, errors.Wrapf(cirfile.ErrInvalidWritePos, "invalid seek pos '%d' in AppendToCmdPtyBlob", pos)
	}
	fileName, err := s.PtyOutFile(screenId, lineId)
	if err != nil {
		return nil, err
	}
	f, err := cirfile.Open(fileName, s.opts...)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := f.WriteAt(ctx, data, pos); err != nil {
		countContention("append", err)
		return nil, err
	}
	metrics.PtyBytesWrittenTotal.Add(float64(len(data)))
	update := &PtyDataUpdate{
		ScreenId:   screenId,
		LineId:     lineId,
		PtyPos:     pos,
		PtyData64:  base64.StdEncoding.EncodeToString(data),
		PtyDataLen: int64(len(data)),
	}
	if p := s.getPublisher(); p != nil {
		p.Publish(update)
	}
	return update, nil
}

// ReadFullPtyOutFile returns (real-offset, data) for everything still held.
func (s *Store) ReadFullPtyOutFile(ctx context.Context, screenId string, lineId string) (int64, []byte, error) {
	fileName, err := s.PtyOutFile(screenId, lineId)
	if err != nil {
		return 0, nil, err
	}
	f, err := cirfile.Open(fileName, s.opts...)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	offset, data, err := f.ReadAll(ctx)
	if err != nil {
		countContention("read", err)
		return 0, nil, err
	}
	metrics.PtyBytesReadTotal.Add(float64(len(data)))
	return offset, data, nil
}

// ReadPtyOutFileAtOffset returns (real-offset, data) for at most maxSize
// bytes starting at offset.
func (s *Store) ReadPtyOutFileAtOffset(ctx context.Context, screenId string, lineId string, offset int64, maxSize int64) (int64, []byte, error) {
	fileName, err := s.PtyOutFile(screenId, lineId)
	if err != nil {
		return 0, nil, err
	}
	f, err := cirfile.Open(fileName, s.opts...)
	if err != nil {
		return 0, nil, err
	}
	defer f.Close()
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	realOffset, data, err := f.ReadAtWithMax(ctx, offset, maxSize)
	if err != nil {
		countContention("read", err)
		return 0, nil, err
	}
	metrics.PtyBytesReadTotal.Add(float64(len(data)))
	return realOffset, data, nil
}

// DeletePtyOutFile removes a line's output. A missing file is not an error.
func (s *Store) DeletePtyOutFile(ctx context.Context, screenId string, lineId string) error {
	fileName, err := s.PtyOutFile(screenId, lineId)
	if err != nil {
		return err
	}
	err = os.Remove(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// DeleteScreenDir removes a screen directory with all of its files.
func (s *Store) DeleteScreenDir(ctx context.Context, screenId string) error {
	screenDir, err := s.EnsureScreenDir(screenId)
	if err != nil {
		return errors.Wrap(err, "error getting screendir")
	}
	log.Info("remove-all %s", screenDir)
	s.forgetScreenDir(screenId)
	return os.RemoveAll(screenDir)
}
