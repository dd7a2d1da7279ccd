package frontend

import (
	"encoding/base64"
	"errors"
	"math"
	"net/http"

	"github.com/termlog/cirstore/ptystore"
	"github.com/termlog/cirstore/utils"
)

var argsNilError = errors.New("Arguments are nil, can not serve nil arguments")

type LineArgs struct {
	ScreenId string `json:"screenid"`
	LineId   string `json:"lineid"`
}

type CreateArgs struct {
	LineArgs
	MaxSize int64 `json:"maxsize"`
}

type CreateReply struct {
	Version string `json:"version"`
}

type StatReply struct {
	Location   string `json:"location"`
	Version    int    `json:"version"`
	MaxSize    int64  `json:"maxsize"`
	FileOffset int64  `json:"fileoffset"`
	DataSize   int64  `json:"datasize"`
}

type AppendArgs struct {
	LineArgs
	Pos    int64  `json:"pos"`
	Data64 string `json:"data64"`
}

type AppendReply struct {
	Update *ptystore.PtyDataUpdate `json:"update"`
}

type ReadAtArgs struct {
	LineArgs
	Offset  int64 `json:"offset"`
	MaxSize int64 `json:"maxsize"`
}

type ReadReply struct {
	Offset  int64  `json:"offset"`
	Data64  string `json:"data64"`
	DataLen int64  `json:"datalen"`
}

// DeleteArgs deletes one line, or the whole screen when LineId is empty.
type DeleteArgs struct {
	ScreenId string `json:"screenid"`
	LineId   string `json:"lineid"`
}

type DeleteReply struct{}

// DiskUsageArgs restricts the report to ScreenId when set.
type DiskUsageArgs struct {
	ScreenId string `json:"screenid"`
}

type DiskUsageReply struct {
	Screens map[string]ptystore.DiskSize `json:"screens"`
}

func (s *DataService) Create(r *http.Request, args *CreateArgs, reply *CreateReply) error {
	if args == nil {
		return argsNilError
	}
	if err := s.store.CreateCmdPtyFile(r.Context(), args.ScreenId, args.LineId, args.MaxSize); err != nil {
		return err
	}
	reply.Version = utils.GitHash
	return nil
}

func (s *DataService) Stat(r *http.Request, args *LineArgs, reply *StatReply) error {
	if args == nil {
		return argsNilError
	}
	st, err := s.store.StatCmdPtyFile(r.Context(), args.ScreenId, args.LineId)
	if err != nil {
		return err
	}
	*reply = StatReply{
		Location:   st.Location,
		Version:    st.Version,
		MaxSize:    st.MaxSize,
		FileOffset: st.FileOffset,
		DataSize:   st.DataSize,
	}
	return nil
}

func (s *DataService) Append(r *http.Request, args *AppendArgs, reply *AppendReply) error {
	if args == nil {
		return argsNilError
	}
	data, err := base64.StdEncoding.DecodeString(args.Data64)
	if err != nil {
		return err
	}
	update, err := s.store.AppendToCmdPtyBlob(r.Context(), args.ScreenId, args.LineId, data, args.Pos)
	if err != nil {
		return err
	}
	reply.Update = update
	return nil
}

func (s *DataService) ReadAll(r *http.Request, args *LineArgs, reply *ReadReply) error {
	if args == nil {
		return argsNilError
	}
	offset, data, err := s.store.ReadFullPtyOutFile(r.Context(), args.ScreenId, args.LineId)
	if err != nil {
		return err
	}
	s.fillRead(reply, offset, data)
	return nil
}

func (s *DataService) ReadAt(r *http.Request, args *ReadAtArgs, reply *ReadReply) error {
	if args == nil {
		return argsNilError
	}
	maxSize := args.MaxSize
	if maxSize <= 0 {
		maxSize = math.MaxInt64
	}
	if s.maxReadSize > 0 && maxSize > s.maxReadSize {
		maxSize = s.maxReadSize
	}
	offset, data, err := s.store.ReadPtyOutFileAtOffset(r.Context(), args.ScreenId, args.LineId, args.Offset, maxSize)
	if err != nil {
		return err
	}
	s.fillRead(reply, offset, data)
	return nil
}

func (s *DataService) fillRead(reply *ReadReply, offset int64, data []byte) {
	reply.Offset = offset
	reply.Data64 = base64.StdEncoding.EncodeToString(data)
	reply.DataLen = int64(len(data))
}

func (s *DataService) Delete(r *http.Request, args *DeleteArgs, reply *DeleteReply) error {
	if args == nil {
		return argsNilError
	}
	if args.LineId == "" {
		return s.store.DeleteScreenDir(r.Context(), args.ScreenId)
	}
	return s.store.DeletePtyOutFile(r.Context(), args.ScreenId, args.LineId)
}

func (s *DataService) DiskUsage(r *http.Request, args *DiskUsageArgs, reply *DiskUsageReply) error {
	if args != nil && args.ScreenId != "" {
		size, err := s.store.ScreenDiskSize(args.ScreenId)
		if err != nil {
			return err
		}
		reply.Screens = map[string]ptystore.DiskSize{args.ScreenId: size}
		return nil
	}
	sizes, err := s.store.FullScreenDiskSize()
	if err != nil {
		return err
	}
	reply.Screens = sizes
	return nil
}
