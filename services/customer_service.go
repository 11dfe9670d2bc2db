package services

import (
	"context"
	"fmt"
	"strings"

	"labquote/models"

	"gorm.io/gorm"
)

type CustomerService struct {
	db *gorm.DB
}

func NewCustomerService(db *gorm.DB) *CustomerService {
	return &CustomerService{db: db}
}

func cleanCustomer(c *models.Customer) error {
	c.CompanyName = strings.TrimSpace(c.CompanyName)
	c.BusinessNumber = strings.TrimSpace(c.BusinessNumber)
	c.Email = strings.TrimSpace(c.Email)
	if c.CompanyName == "" {
		return validation("company name is required")
	}
	return nil
}

func (s *CustomerService) Create(ctx context.Context, actor Actor, in models.Customer) (*models.Customer, error) {
	if err := cleanCustomer(&in); err != nil {
		return nil, err
	}
	in.ID = 0
	in.CreatedBy = actor.UserID
	requesters := in.Requesters
	in.Requesters = nil
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.BusinessNumber != "" {
			var n int64
			if err := tx.Model(&models.Customer{}).Where("business_number = ?", in.BusinessNumber).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return translate(gorm.ErrDuplicatedKey, "customer with business number "+in.BusinessNumber)
			}
		}
		if err := tx.Create(&in).Error; err != nil {
			return translate(err, "customer")
		}
		for i := range requesters {
			r := requesters[i]
			r.ID = 0
			r.CustomerID = in.ID
			if strings.TrimSpace(r.Name) == "" {
				return validation("requester name is required")
			}
			if err := tx.Create(&r).Error; err != nil {
				return translate(err, "requester")
			}
			in.Requesters = append(in.Requesters, r)
		}
		return record(tx, actor, EntityCustomer, in.ID, "create", "%s created", in.CompanyName)
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *CustomerService) Update(ctx context.Context, actor Actor, id uint, in models.Customer) (*models.Customer, error) {
	if err := cleanCustomer(&in); err != nil {
		return nil, err
	}
	var c models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err, "customer")
		}
		c.CompanyName = in.CompanyName
		c.BusinessNumber = in.BusinessNumber
		c.Industry = in.Industry
		c.Address = in.Address
		c.Phone = in.Phone
		c.Email = in.Email
		c.Notes = in.Notes
		if err := tx.Save(&c).Error; err != nil {
			return translate(err, "customer")
		}
		return record(tx, actor, EntityCustomer, c.ID, "update", "%s updated", c.CompanyName)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CustomerService) Get(ctx context.Context, id uint) (*models.Customer, error) {
	var c models.Customer
	err := s.db.WithContext(ctx).
		Preload("Requesters", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		First(&c, id).Error
	if err != nil {
		return nil, translate(err, "customer")
	}
	return &c, nil
}

// List searches company name and business number.
func (s *CustomerService) List(ctx context.Context, query string, page, size int) ([]models.Customer, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Customer{})
	if query != "" {
		like := likePattern(query)
		q = q.Where("(LOWER(company_name) LIKE ? OR LOWER(business_number) LIKE ?)", like, like)
	}
	var list []models.Customer
	total, err := findPage(q, "company_name, id", page, size, &list)
	return list, total, err
}

// Delete removes a customer that has no quotations or contracts.
func (s *CustomerService) Delete(ctx context.Context, actor Actor, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, id).Error; err != nil {
			return translate(err, "customer")
		}
		var quotes int64
		if err := tx.Model(&models.Quotation{}).Where("customer_id = ?", id).Count(&quotes).Error; err != nil {
			return err
		}
		if quotes > 0 {
			return fmt.Errorf("%w: customer %s has %d quotations", ErrConflict, c.CompanyName, quotes)
		}
		if err := tx.Where("customer_id = ?", id).Delete(&models.Requester{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&c).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityCustomer, id, "delete", "%s deleted", c.CompanyName)
	})
}

func (s *CustomerService) ListRequesters(ctx context.Context, customerID uint) ([]models.Requester, error) {
	if _, err := s.Get(ctx, customerID); err != nil {
		return nil, err
	}
	var list []models.Requester
	err := s.db.WithContext(ctx).Where("customer_id = ?", customerID).Order("name, id").Find(&list).Error
	return list, err
}

func (s *CustomerService) AddRequester(ctx context.Context, actor Actor, customerID uint, r models.Requester) (*models.Requester, error) {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" {
		return nil, validation("requester name is required")
	}
	r.ID = 0
	r.CustomerID = customerID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Customer
		if err := tx.First(&c, customerID).Error; err != nil {
			return translate(err, "customer")
		}
		if err := tx.Create(&r).Error; err != nil {
			return translate(err, "requester")
		}
		return record(tx, actor, EntityRequester, r.ID, "create", "%s added to %s", r.Name, c.CompanyName)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *CustomerService) UpdateRequester(ctx context.Context, actor Actor, customerID, id uint, in models.Requester) (*models.Requester, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validation("requester name is required")
	}
	var r models.Requester
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customerID).First(&r, id).Error; err != nil {
			return translate(err, "requester")
		}
		r.Name = in.Name
		r.Department = in.Department
		r.Position = in.Position
		r.Email = in.Email
		r.Phone = in.Phone
		if err := tx.Save(&r).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityRequester, r.ID, "update", "%s updated", r.Name)
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *CustomerService) DeleteRequester(ctx context.Context, actor Actor, customerID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var r models.Requester
		if err := tx.Where("customer_id = ?", customerID).First(&r, id).Error; err != nil {
			return translate(err, "requester")
		}
		if err := tx.Model(&models.Quotation{}).Where("requester_id = ?", id).Update("requester_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Delete(&r).Error; err != nil {
			return err
		}
		return record(tx, actor, EntityRequester, id, "delete", "%s removed", r.Name)
	})
}
