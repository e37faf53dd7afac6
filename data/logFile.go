package data

import (
	"bytes"
	"errors"
	"hash/crc32"
	"io"

	"github.com/Kirov7/CouloyLite/driver"
	"github.com/Kirov7/CouloyLite/public"
)

// ErrIncompleteRecord a record was cut short, usually by a crash during append
var ErrIncompleteRecord = errors.New("incomplete logRecord at the end of the log")

// LogFile is the single append-only log behind a storage target
type LogFile struct {
	Path     string
	WriteOff int64
	Writer   driver.IOManager
}

// OpenLogFile opens or creates the log, a new or torn-at-birth log gets a fresh magic header
func OpenLogFile(path string) (*LogFile, error) {
	writer, err := driver.NewIOManager(path)
	if err != nil {
		return nil, err
	}
	lf := &LogFile{Path: path, Writer: writer}

	size, err := writer.Size()
	if err != nil {
		_ = writer.Close()
		return nil, err
	}

	magicLen := int64(len(public.LOG_MAGIC))
	if size < magicLen {
		if size > 0 && !bytes.HasPrefix(public.LOG_MAGIC, readPrefix(writer, size)) {
			_ = writer.Close()
			return nil, public.ErrInvalidStorageTarget
		}
		if err := writer.Truncate(0); err != nil {
			_ = writer.Close()
			return nil, err
		}
		if err := lf.Write(public.LOG_MAGIC); err != nil {
			_ = writer.Close()
			return nil, err
		}
		if err := lf.Sync(); err != nil {
			_ = writer.Close()
			return nil, err
		}
		return lf, nil
	}

	if !bytes.Equal(readPrefix(writer, magicLen), public.LOG_MAGIC) {
		_ = writer.Close()
		return nil, public.ErrInvalidStorageTarget
	}
	lf.WriteOff = size
	return lf, nil
}

func readPrefix(r driver.IOManager, n int64) []byte {
	buf := make([]byte, n)
	read, _ := r.Read(buf, 0)
	return buf[:read]
}

// HeaderSize offset of the first record
func (lf *LogFile) HeaderSize() int64 {
	return int64(len(public.LOG_MAGIC))
}

func (lf *LogFile) Write(buf []byte) error {
	n, err := lf.Writer.Write(buf)
	lf.WriteOff += int64(n)
	return err
}

// Truncate drops everything after off
func (lf *LogFile) Truncate(off int64) error {
	if err := lf.Writer.Truncate(off); err != nil {
		return err
	}
	lf.WriteOff = off
	return nil
}

func (lf *LogFile) Sync() error {
	return lf.Writer.Sync()
}

func (lf *LogFile) Close() error {
	return lf.Writer.Close()
}

// NewReader returns a reader over the current content of the log. File
// targets are scanned through a read only mmap, memory targets directly.
func (lf *LogFile) NewReader() (*LogReader, error) {
	if mem, ok := lf.Writer.(*driver.MemIO); ok {
		size, _ := mem.Size()
		return &LogReader{reader: mem, size: size, closer: func() error { return nil }}, nil
	}
	mm, err := driver.NewMMap(lf.Path)
	if err != nil {
		return nil, err
	}
	size, _ := mm.Size()
	return &LogReader{reader: mm, size: size, closer: mm.Close}, nil
}

type LogReader struct {
	reader driver.IOManager
	size   int64
	closer func() error
}

func (lr *LogReader) Size() int64 {
	return lr.size
}

// ReadLogRecord reads the record at offset and returns its encoded size.
// io.EOF marks the clean end of the log, ErrIncompleteRecord and
// public.ErrInvalidCRC mark a damaged tail.
func (lr *LogReader) ReadLogRecord(offset int64) (*LogRecord, int64, error) {
	if offset >= lr.size {
		return nil, 0, io.EOF
	}

	var headerBytes int64 = maxLogRecordHeaderSize
	if offset+maxLogRecordHeaderSize > lr.size {
		headerBytes = lr.size - offset
	}

	headerBuf, err := lr.readNBytes(headerBytes, offset)
	if err != nil {
		return nil, 0, err
	}
	header, headerSize := DecodeLogRecordHeader(headerBuf)
	if header == nil {
		return nil, 0, ErrIncompleteRecord
	}

	keySize, valueSize := int64(header.KeySize), int64(header.ValueSize)
	var recordSize = headerSize + keySize + valueSize
	if offset+recordSize > lr.size {
		return nil, 0, ErrIncompleteRecord
	}

	logRecord := &LogRecord{
		Type:       header.RecordType,
		DataType:   header.DataType,
		Expiration: header.Expiration,
	}
	if keySize > 0 || valueSize > 0 {
		kvBuf, err := lr.readNBytes(keySize+valueSize, offset+headerSize)
		if err != nil {
			return nil, 0, err
		}
		logRecord.Key = kvBuf[:keySize]
		logRecord.Value = kvBuf[keySize:]
	}

	crc := GetLogRecordCRC(logRecord, headerBuf[crc32.Size:headerSize])
	if crc != header.crc {
		return nil, 0, public.ErrInvalidCRC
	}
	return logRecord, recordSize, nil
}

func (lr *LogReader) Close() error {
	return lr.closer()
}

func (lr *LogReader) readNBytes(n int64, offset int64) ([]byte, error) {
	b := make([]byte, n)
	read, err := lr.reader.Read(b, offset)
	if err != nil && !(err == io.EOF && int64(read) == n) {
		if err == io.EOF {
			return nil, ErrIncompleteRecord
		}
		return nil, err
	}
	return b, nil
}
