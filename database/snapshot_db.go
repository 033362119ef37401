package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"kijunserver/dataset"
)

// DBConfig SQLite 接続のプール設定
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SnapshotDB 正規化済みデータセットのスナップショットを保持する SQLite
// ラッパ。スナップショットはバッチ取り込みのたびに全件作り直す
// （増分更新はしない）。
type SnapshotDB struct {
	conn *sql.DB
	path string
}

// NewSnapshotDB スナップショット DB への接続を開く
func NewSnapshotDB(dbPath string) (*SnapshotDB, error) {
	return NewSnapshotDBWithConfig(dbPath, DBConfig{})
}

// NewSnapshotDBWithConfig プール設定付きで接続を開く。
// インメモリ DB では接続ごとに空の DB が見えてしまうため、接続数を1に固定する。
func NewSnapshotDBWithConfig(dbPath string, config DBConfig) (*SnapshotDB, error) {
	conn, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("スナップショット DB を開けません %s: %w", dbPath, err)
	}

	if isInMemory(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}
	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("スナップショット DB に接続できません %s: %w", dbPath, err)
	}

	return &SnapshotDB{conn: conn, path: dbPath}, nil
}

func isInMemory(dbPath string) bool {
	return dbPath == ":memory:" || dbPath == "file::memory:?cache=shared"
}

// Close 接続を閉じる
func (db *SnapshotDB) Close() error {
	return db.conn.Close()
}

// Path 接続先のパス
func (db *SnapshotDB) Path() string {
	return db.path
}

const snapshotSchema = `
CREATE TABLE filing_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	institution_number TEXT NOT NULL,
	acceptance_number TEXT NOT NULL,
	institution_name TEXT NOT NULL DEFAULT '',
	co_located_number TEXT NOT NULL DEFAULT '',
	symbol_number TEXT NOT NULL DEFAULT '',
	prefecture TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	phone TEXT NOT NULL DEFAULT '',
	fax TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	classification TEXT NOT NULL DEFAULT '',
	bed_count_raw TEXT NOT NULL DEFAULT '',
	bed_count_json TEXT NOT NULL DEFAULT '{}',
	filing_name TEXT NOT NULL DEFAULT '',
	filing_symbol TEXT NOT NULL DEFAULT '',
	remark_header TEXT NOT NULL DEFAULT '',
	remark_data TEXT NOT NULL DEFAULT '',
	billing_start_raw TEXT NOT NULL DEFAULT '',
	billing_start TEXT NOT NULL DEFAULT ''
);
CREATE INDEX idx_filing_records_number ON filing_records(institution_number);
CREATE INDEX idx_filing_records_name ON filing_records(institution_name);
CREATE INDEX idx_filing_records_filing ON filing_records(filing_name);
`

// SaveDataset データセットをスナップショットとして書き込む。
// 既存のスナップショットは破棄して作り直す。
func (db *SnapshotDB) SaveDataset(ds *dataset.Dataset) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("トランザクションを開始できません: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS filing_records`); err != nil {
		return fmt.Errorf("既存スナップショットを破棄できません: %w", err)
	}
	if _, err := tx.Exec(snapshotSchema); err != nil {
		return fmt.Errorf("スキーマを作成できません: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO filing_records (
			institution_number, acceptance_number, institution_name,
			co_located_number, symbol_number, prefecture, postal_code,
			address, phone, fax, category, classification,
			bed_count_raw, bed_count_json, filing_name, filing_symbol,
			remark_header, remark_data, billing_start_raw, billing_start
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("INSERT を準備できません: %w", err)
	}
	defer stmt.Close()

	records := ds.Records()
	for i := range records {
		r := &records[i]

		bedCountJSON, err := json.Marshal(r.BedCount)
		if err != nil {
			return fmt.Errorf("病床数をシリアライズできません (行%d): %w", i+1, err)
		}
		billingStart := ""
		if r.BillingStart != nil {
			billingStart = r.BillingStart.Format("2006-01-02")
		}

		if _, err := stmt.Exec(
			r.InstitutionNumber, r.AcceptanceNumber, r.InstitutionName,
			r.CoLocatedNumber, r.SymbolNumber, r.Prefecture, r.PostalCode,
			r.Address, r.Phone, r.Fax, r.Category, r.Classification,
			r.BedCountRaw, string(bedCountJSON), r.FilingName, r.FilingSymbol,
			r.RemarkHeader, r.RemarkData, r.BillingStartRaw, billingStart,
		); err != nil {
			return fmt.Errorf("レコードを書き込めません (行%d): %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットできません: %w", err)
	}

	log.Printf("Snapshot saved: %d records -> %s", len(records), db.path)
	return nil
}

// LoadDataset スナップショットからデータセットを復元する。
// 病床数カラムはスキーマ統合で null 値のキーが混入している可能性があるため、
// 読み込み時に取り除く。壊れたエンコーディングは空の BedCount に落とす。
func (db *SnapshotDB) LoadDataset() (*dataset.Dataset, error) {
	rows, err := db.conn.Query(`
		SELECT institution_number, acceptance_number, institution_name,
		       co_located_number, symbol_number, prefecture, postal_code,
		       address, phone, fax, category, classification,
		       bed_count_raw, bed_count_json, filing_name, filing_symbol,
		       remark_header, remark_data, billing_start_raw, billing_start
		FROM filing_records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("スナップショットを読み込めません: %w", err)
	}
	defer rows.Close()

	var records []dataset.Record
	for rows.Next() {
		var r dataset.Record
		var bedCountJSON, billingStart string
		if err := rows.Scan(
			&r.InstitutionNumber, &r.AcceptanceNumber, &r.InstitutionName,
			&r.CoLocatedNumber, &r.SymbolNumber, &r.Prefecture, &r.PostalCode,
			&r.Address, &r.Phone, &r.Fax, &r.Category, &r.Classification,
			&r.BedCountRaw, &bedCountJSON, &r.FilingName, &r.FilingSymbol,
			&r.RemarkHeader, &r.RemarkData, &r.BillingStartRaw, &billingStart,
		); err != nil {
			return nil, fmt.Errorf("レコードを復元できません: %w", err)
		}

		r.BedCount = dataset.ParseBedCountJSON(bedCountJSON)
		if billingStart != "" {
			if t, err := time.ParseInLocation("2006-01-02", billingStart, time.UTC); err == nil {
				r.BillingStart = &t
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("スナップショットの走査に失敗しました: %w", err)
	}

	return dataset.New(records), nil
}

// RecordCount スナップショット内のレコード件数
func (db *SnapshotDB) RecordCount() (int, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM filing_records`).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}
