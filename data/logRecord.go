package data

import (
	"encoding/binary"
	"hash/crc32"
)

type LogRecordType = byte

const (
	LogRecordNormal LogRecordType = iota
	LogRecordDeleted
	LogRecordTxnCommit
	LogRecordSnapshot
)

const (
	// crc type dataType keySize valueSize expiration
	// 4 + 1 + 1 + 5 + 5 + 10 = 26
	maxLogRecordHeaderSize = binary.MaxVarintLen32*2 + binary.MaxVarintLen64 + 6
)

type LogRecordHeader struct {
	crc        uint32
	RecordType LogRecordType
	DataType   DataType
	KeySize    uint32
	ValueSize  uint32
	Expiration int64
}

// LogRecord one committed mutation of one key, or a marker
type LogRecord struct {
	Key        []byte
	Value      []byte
	Type       LogRecordType
	DataType   DataType
	Expiration int64
}

func EncodeLogRecord(log *LogRecord) ([]byte, int64) {
	// init header
	header := make([]byte, maxLogRecordHeaderSize)

	header[4] = log.Type
	header[5] = byte(log.DataType)
	var index = 6
	// after the 6th byte the key size, the value size and the expiration are stored as varInt
	index += binary.PutVarint(header[index:], int64(len(log.Key)))
	index += binary.PutVarint(header[index:], int64(len(log.Value)))
	index += binary.PutVarint(header[index:], log.Expiration)

	var size = index + len(log.Key) + len(log.Value)
	encBytes := make([]byte, size)
	copy(encBytes[:index], header[:index])
	copy(encBytes[index:], log.Key)
	copy(encBytes[index+len(log.Key):], log.Value)

	crc := crc32.ChecksumIEEE(encBytes[4:])
	binary.LittleEndian.PutUint32(encBytes[:4], crc)

	return encBytes, int64(size)
}

// DecodeLogRecordHeader returns nil when buf does not hold a complete header
func DecodeLogRecordHeader(buf []byte) (*LogRecordHeader, int64) {
	if len(buf) <= 6 {
		return nil, 0
	}

	header := &LogRecordHeader{
		crc:        binary.LittleEndian.Uint32(buf[:4]),
		RecordType: buf[4],
		DataType:   DataType(buf[5]),
	}

	var index = 6

	keySize, n := binary.Varint(buf[index:])
	if n <= 0 || keySize < 0 {
		return nil, 0
	}
	header.KeySize = uint32(keySize)
	index += n

	valueSize, n := binary.Varint(buf[index:])
	if n <= 0 || valueSize < 0 {
		return nil, 0
	}
	header.ValueSize = uint32(valueSize)
	index += n

	expiration, n := binary.Varint(buf[index:])
	if n <= 0 {
		return nil, 0
	}
	header.Expiration = expiration
	index += n

	return header, int64(index)
}

func GetLogRecordCRC(lr *LogRecord, header []byte) uint32 {
	if lr == nil {
		return 0
	}

	crc := crc32.ChecksumIEEE(header)
	crc = crc32.Update(crc, crc32.IEEETable, lr.Key)
	crc = crc32.Update(crc, crc32.IEEETable, lr.Value)

	return crc
}

// EncodeKeyWithTxId prefixes key with the id of the transaction that wrote it
func EncodeKeyWithTxId(key []byte, txId uint64) []byte {
	txBin := make([]byte, binary.MaxVarintLen64)
	lenTxBin := binary.PutUvarint(txBin[:], txId)
	encKey := make([]byte, lenTxBin+len(key))
	copy(encKey[:lenTxBin], txBin[:lenTxBin])
	copy(encKey[lenTxBin:], key)
	return encKey
}

// ParseLogRecordKey splits an encoded key into the real key and the txId
func ParseLogRecordKey(key []byte) ([]byte, uint64, bool) {
	txId, n := binary.Uvarint(key)
	if n <= 0 {
		return nil, 0, false
	}
	return key[n:], txId, true
}
