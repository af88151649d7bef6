package bulk

import (
	"context"
	"fmt"
	"sync"

	"ADMINKA1.0/internal/audit"
	"ADMINKA1.0/internal/metrics"
	"ADMINKA1.0/internal/models"
	"ADMINKA1.0/internal/models/domainErrors"
	"ADMINKA1.0/internal/storage"
	"ADMINKA1.0/internal/tools/logger"
)

const defaultWorkers = 4

// Operation - действие над одним id, удаление или смена статуса.
type Operation func(ctx context.Context, id string) error

type ItemFailure struct {
	ID    string `json:"id"`
	Code  string `json:"code"`
	Error string `json:"error"`
}

// Result - итоговое разбиение, порядок внутри списков не гарантируется.
type Result struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
}

// Operator гоняет одну операцию по набору id в ограниченном пуле
// воркеров. Ошибка одного id не прерывает остальные.
type Operator struct {
	storage storage.Storage
	audit   *audit.Log
	workers int
}

func NewOperator(s storage.Storage, a *audit.Log, workers int) *Operator {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Operator{storage: s, audit: a, workers: workers}
}

func (o *Operator) Apply(ctx context.Context, ids []string, op Operation) Result {
	jobs := make(chan string)
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		result Result
	)
	result.Succeeded = make([]string, 0, len(ids))
	result.Failed = make([]ItemFailure, 0)

	workers := o.workers
	if workers > len(ids) {
		workers = len(ids)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				err := op(ctx, id)

				mu.Lock()
				if err != nil {
					result.Failed = append(result.Failed, ItemFailure{
						ID:    id,
						Code:  domainErrors.Code(err),
						Error: err.Error(),
					})
					metrics.BulkItems.WithLabelValues("failed").Inc()
				} else {
					result.Succeeded = append(result.Succeeded, id)
					metrics.BulkItems.WithLabelValues("succeeded").Inc()
				}
				mu.Unlock()
			}
		}()
	}

	for _, id := range ids {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	return result
}

// HardDelete выполняет план удаления ресурса: сперва разрешаем
// зависимую корневую запись, потом дети, потом сама строка, история
// аудита, корень последним. Шаги именованы, чтобы сбой был привязан
// к конкретному шагу.
func (o *Operator) HardDelete(ctx context.Context, resourceType, id string) error {
	spec, err := models.Spec(resourceType)
	if err != nil {
		return err
	}
	if len(spec.DeletePlan) == 0 {
		return fmt.Errorf("%w: %s не удаляется жёстко", domainErrors.ErrValidationFailed, resourceType)
	}

	row, err := o.storage.Get(ctx, spec.Table, id)
	if err != nil {
		if storage.IsNotFound(err) {
			return domainErrors.ErrNotFound
		}
		return fmt.Errorf("%w: %v", domainErrors.ErrDepUnavailable, err)
	}

	// корневая запись разрешается до любого удаления
	var rootID string
	if spec.RootRef != nil {
		rootID, _ = row[spec.RootRef.Column].(string)
		if rootID == "" {
			return fmt.Errorf("%w: %s.%s пуст", domainErrors.ErrMissingDependent, spec.Table, spec.RootRef.Column)
		}
		if _, err := o.storage.Get(ctx, spec.RootRef.Table, rootID); err != nil {
			if storage.IsNotFound(err) {
				return fmt.Errorf("%w: %s/%s", domainErrors.ErrMissingDependent, spec.RootRef.Table, rootID)
			}
			return fmt.Errorf("%w: %v", domainErrors.ErrDepUnavailable, err)
		}
	}

	if err := o.cascade(ctx, spec, id); err != nil {
		return err
	}

	// история уходит вместе с ресурсом, сирот не держим
	if _, err := o.audit.DeleteFor(ctx, resourceType, id); err != nil {
		logger.LogErrorWithCode(ctx, domainErrors.ErrInternalError,
			fmt.Sprintf("audit cleanup failed for %s/%s: %v", resourceType, id, err))
	}

	if rootID != "" {
		if err := o.storage.Delete(ctx, spec.RootRef.Table, rootID); err != nil && !storage.IsNotFound(err) {
			return fmt.Errorf("%w: шаг %s: %v", domainErrors.ErrDepUnavailable, spec.RootRef.Table, err)
		}
	}
	return nil
}

// cascade удаляет ресурс вместе со всеми потомками. Таблицы-связки
// (order_items, event_participants) чистятся одним DeleteWhere, а
// дочерние ресурсы удаляются по их собственным планам, каждый вместе
// со своей историей аудита. Сирот после каскада не остаётся.
func (o *Operator) cascade(ctx context.Context, spec *models.ResourceSpec, id string) error {
	for _, step := range spec.DeletePlan {
		if step.FK == "" {
			continue
		}

		childSpec, ok := models.SpecByTable(step.Table)
		if !ok {
			if _, err := o.storage.DeleteWhere(ctx, step.Table, storage.Row{step.FK: id}); err != nil {
				return fmt.Errorf("%w: шаг %s: %v", domainErrors.ErrDepUnavailable, step.Table, err)
			}
			continue
		}

		children, err := o.storage.List(ctx, step.Table, storage.Filter{
			Eq: map[string]any{step.FK: id},
		})
		if err != nil {
			return fmt.Errorf("%w: шаг %s: %v", domainErrors.ErrDepUnavailable, step.Table, err)
		}
		for _, child := range children {
			childID, _ := child["id"].(string)
			if childID == "" {
				continue
			}
			if err := o.cascade(ctx, childSpec, childID); err != nil {
				return err
			}
			if _, err := o.audit.DeleteFor(ctx, childSpec.Type, childID); err != nil {
				logger.LogErrorWithCode(ctx, domainErrors.ErrInternalError,
					fmt.Sprintf("audit cleanup failed for %s/%s: %v", childSpec.Type, childID, err))
			}
		}
	}

	if err := o.storage.Delete(ctx, spec.Table, id); err != nil && !storage.IsNotFound(err) {
		return fmt.Errorf("%w: шаг %s: %v", domainErrors.ErrDepUnavailable, spec.Table, err)
	}
	return nil
}
