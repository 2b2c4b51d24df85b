package conversation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"qartelbot/models"
	"qartelbot/services/wording"
)

const (
	dateLayout   = "02.01.2006"
	notSpecified = "Не указано"
)

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// splitTaxID splits "ИНН/КПП"; missing halves become models.NotSpecified.
func splitTaxID(v string) (inn, kpp string) {
	inn, kpp = models.NotSpecified, models.NotSpecified
	parts := strings.SplitN(v, "/", 2)
	if p := strings.TrimSpace(parts[0]); p != "" {
		inn = p
	}
	if len(parts) == 2 {
		if p := strings.TrimSpace(parts[1]); p != "" {
			kpp = p
		}
	}
	return inn, kpp
}

// partyFields are the counterparty placeholders shared by contracts and appendices.
// Signatory and basis appear once in genitive for the preamble and once
// in nominative for the signature block.
func partyFields(c *models.Counterparty) map[string]string {
	inn, kpp := splitTaxID(c.TaxID)
	title := orDefault(c.SignatoryTitle, notSpecified)
	name := orDefault(c.SignatoryName, notSpecified)
	short := notSpecified
	if strings.TrimSpace(c.SignatoryName) != "" {
		short = wording.AbbreviateFullName(c.SignatoryName)
	}
	return map[string]string{
		"НазваниеКонтрагента":     c.Name,
		"ИНН":                     inn,
		"КПП":                     kpp,
		"Должность ЛПР_Род":       wording.InflectGenitive(title),
		"Должность ЛПР_Им":        title,
		"ФИОЛПР_Род":              wording.InflectGenitive(name),
		"ФИОЛПР_Им":               short,
		"Основание(устав/ОГРНИП)": wording.InflectGenitive(orDefault(c.SigningBasis, notSpecified)),
		"Адрес":                   c.LegalAddress,
		"Банк":                    orDefault(c.BankName, models.NotSpecified),
		"Р/С":                     orDefault(c.Account, models.NotSpecified),
		"К/С":                     orDefault(c.CorrAccount, models.NotSpecified),
		"БИК":                     orDefault(c.RoutingCode, models.NotSpecified),
		"ОГРН/ОГРНИП":             orDefault(c.RegNumber, models.NotSpecified),
	}
}

func contractFields(c *models.Counterparty, number int, now time.Time) map[string]string {
	data := partyFields(c)
	data["дата"] = now.Format(dateLayout)
	data["№"] = strconv.Itoa(number)
	return data
}

func appendixFields(c *models.Counterparty, contract *models.Contract, number int, d *models.AppendixDraft, now time.Time) map[string]string {
	data := partyFields(c)
	contractDate := models.NotSpecified
	if !contract.CreatedAt.IsZero() {
		contractDate = contract.CreatedAt.Format(dateLayout)
	}
	data["номерприложения"] = strconv.Itoa(number)
	data["датаприложения"] = now.Format(dateLayout)
	data["Номердоговора"] = strconv.Itoa(contract.Number)
	data["Датадоговор"] = contractDate
	data["ТаблицаУслуг"] = servicesTable(d)
	data["период"] = d.Period
	data["адресмонтажа"] = models.NotSpecified
	data["ИтогоКОплатеЦифрой"] = wording.FormatRubles(d.Total)
	data["ИтогоКОплатеТекстом"] = wording.CurrencyInWords(d.Total)
	data["НДС_Цифрой"] = wording.FormatRubles(d.VAT)
	data["НДС_Текстом"] = wording.CurrencyInWords(d.VAT)
	data["срокпредоставленияуслуг"] = d.Period
	data["Адреспредоставленияуслуг"] = d.Address
	return data
}

// servicesTable renders line items one per line. A linked sheet is passed through.
func servicesTable(d *models.AppendixDraft) string {
	if d.SheetURL != "" {
		return d.SheetURL
	}
	lines := make([]string, 0, len(d.Items))
	for i, item := range d.Items {
		price := wording.FormatRubles(item.Amount)
		lines = append(lines, fmt.Sprintf("%d. %s | %s | %s | %s | %s",
			i+1, item.Description, item.Kind, item.Quantity, price, price))
	}
	return strings.Join(lines, "\n")
}

func trustFields(d *models.TrustDraft, number int, now time.Time) map[string]string {
	return map[string]string{
		"Дата":        now.Format(dateLayout),
		"Номер":       strconv.Itoa(number),
		"ФИО":         d.FullName,
		"Паспорт":     d.Passport,
		"Выдан":       d.IssuedBy,
		"Дата выдачи": d.IssueDate,
	}
}

func waybillFields(d *models.WaybillDraft) map[string]string {
	return map[string]string{
		"Дата":                     d.Date,
		"Конструкции":              d.Cargo,
		"Вес":                      d.Weight,
		"Грузоотправитель":         d.Sender,
		"Грузополучатель":          d.Receiver,
		"Адрес_выгрузки":           d.Address,
		"Автомобиль_марка":         d.VehicleBrand,
		"Автомобиль_номер":         d.VehiclePlate,
		"Количество_грузовых_мест": d.Pieces,
		"ФИО_водителя":             d.Driver,
	}
}
