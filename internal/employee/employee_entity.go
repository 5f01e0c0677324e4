package employee

import (
	"time"
)

type Employee struct {
	EmployeeID        int64     `gorm:"column:employee_id;primaryKey;autoIncrement"`
	Name              string    `gorm:"column:name;type:varchar(100);not null"`
	// Tanpa tag default: dengan tag itu gorm membuang nilai 0 dari INSERT
	// sehingga saldo awal 0 yang eksplisit berubah jadi 20 di database.
	// Default 20 diisi oleh service saat field tidak dikirim.
	TotalLeaveBalance int       `gorm:"column:total_leave_balance;not null"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (Employee) TableName() string {
	return "employees"
}
