package history

import (
	"assetflow/domain"
	"assetflow/idgen"
	"assetflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	historyIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	HistoryPersistCreateFunc = historyPersistCreate
)

// Record appends one audit entry. It must be invoked with the transaction of
// the state change it describes, so that history is never observed out of
// sync with the header and detail rows.
func Record(headerId, detailId types.ID, action, notes string, identity *session.Identity, db *gorm.DB) (*domain.HistoryRecord, error) {
	record := domain.HistoryRecord{
		ID:       idgen.NextID(historyIdWorker),
		HeaderID: headerId,
		DetailID: detailId,

		Action:    action,
		ActorID:   identity.ID,
		ActorName: identity.Name,
		Notes:     notes,

		Timestamp: types.CurrentTimestamp(),
	}
	if err := HistoryPersistCreateFunc(&record, db); err != nil {
		return nil, err
	}
	return &record, nil
}

func QueryHistories(headerId types.ID, db *gorm.DB) ([]domain.HistoryRecord, error) {
	var records []domain.HistoryRecord
	if err := db.Where(&domain.HistoryRecord{HeaderID: headerId}).
		Order("timestamp ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func historyPersistCreate(record *domain.HistoryRecord, db *gorm.DB) error {
	return db.Create(record).Error
}
