//
// Copyright (c) 2017 Stanford University. All rights reserved.
//
// Conversion job ledger.
//
// Every lane conversion is recorded in a local sqlite database so that the
// watcher daemon can skip already-converted lanes and the API can report
// job history.
//
package ledger

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"

	_ "github.com/mattn/go-sqlite3"
)

type DatabaseManager struct {
	name string
	url  string
	conn *sql.DB
}

// Conversion is one recorded bcl2fastq run.
type Conversion struct {
	Id          int64     `json:"id"`
	RunName     string    `json:"run_name"`
	LaneIndex   int       `json:"lane_index"`
	FlowcellId  string    `json:"flowcell_id"`
	LibraryName string    `json:"library_name"`
	BasesMask   string    `json:"bases_mask"`
	SampleSheet string    `json:"sample_sheet"`
	FastqCount  int       `json:"fastq_count"`
	State       string    `json:"state"`
	Started     time.Time `json:"started"`
	Finished    time.Time `json:"finished"`
}

func NewDatabaseManager(name string, url string) (*DatabaseManager, error) {
	if name != "sqlite3" {
		return nil, errors.Errorf("ledger: invalid database driver: %s", name)
	}
	self := &DatabaseManager{}
	self.name = name
	self.url = url
	return self, nil
}

func (self *DatabaseManager) Open() error {
	conn, err := sql.Open(self.name, self.url)
	if err != nil {
		return errors.Wrapf(err, "ledger: could not open database %s", self.url)
	}
	self.conn = conn
	if err := self.conn.Ping(); err != nil {
		return errors.Wrapf(err, "ledger: could not ping database %s", self.url)
	}
	return nil
}

func (self *DatabaseManager) Close() error {
	return self.conn.Close()
}

func (self *DatabaseManager) CreateTables() error {
	_, err := self.conn.Exec(`create table if not exists conversions (
		id integer not null primary key,
		run_name text,
		lane_index integer,
		flowcell_id text,
		library_name text,
		bases_mask text,
		sample_sheet text,
		fastq_count integer,
		state text,
		started time,
		finished time
	)`)
	if err != nil {
		return errors.Wrap(err, "ledger: could not create tables")
	}
	return nil
}

func (self *DatabaseManager) InsertConversion(c *Conversion) error {
	result, err := self.conn.Exec(
		`insert into conversions (run_name, lane_index, flowcell_id, library_name,
			bases_mask, sample_sheet, fastq_count, state, started, finished)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.RunName, c.LaneIndex, c.FlowcellId, c.LibraryName, c.BasesMask,
		c.SampleSheet, c.FastqCount, c.State, c.Started, c.Finished)
	if err != nil {
		return errors.Wrap(err, "ledger: could not insert conversion")
	}
	c.Id, _ = result.LastInsertId()
	return nil
}

// GetConversions returns the most recent conversions, newest first.
func (self *DatabaseManager) GetConversions(limit int) ([]*Conversion, error) {
	rows, err := self.conn.Query(
		`select id, run_name, lane_index, flowcell_id, library_name, bases_mask,
			sample_sheet, fastq_count, state, started, finished
			from conversions order by id desc limit ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "ledger: could not query conversions")
	}
	defer rows.Close()

	conversions := []*Conversion{}
	for rows.Next() {
		c := &Conversion{}
		if err := rows.Scan(&c.Id, &c.RunName, &c.LaneIndex, &c.FlowcellId,
			&c.LibraryName, &c.BasesMask, &c.SampleSheet, &c.FastqCount,
			&c.State, &c.Started, &c.Finished); err != nil {
			return nil, errors.Wrap(err, "ledger: could not scan conversion")
		}
		conversions = append(conversions, c)
	}
	return conversions, rows.Err()
}

// HasConversion reports whether a completed conversion is already recorded
// for the given run and lane.
func (self *DatabaseManager) HasConversion(runName string, laneIndex int) (bool, error) {
	row := self.conn.QueryRow(
		`select count(*) from conversions where run_name = ? and lane_index = ? and state = 'complete'`,
		runName, laneIndex)
	count := 0
	if err := row.Scan(&count); err != nil {
		return false, errors.Wrap(err, "ledger: could not count conversions")
	}
	return count > 0, nil
}
